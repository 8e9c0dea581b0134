package pview

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Cache tags and lifetime of the structure cache.
const (
	CacheTag          = "pview_attribute_groups"
	CacheTagSetPrefix = "pview_as_"
	CacheLifetime     = 86400 * time.Second

	structureKeyPrefix = "pview_group_structure_"
)

var unsafeKeyChars = regexp.MustCompile(`(?i)[^a-z0-9_\-]`)

// CacheTagsForAttributeSet returns the tags to clean when the structure of
// setID changes. It is empty for setID <= 0.
func CacheTagsForAttributeSet(setID int) []string {
	if setID <= 0 {
		return nil
	}
	return []string{SetTag(setID)}
}

// SetTag is the per-set cache tag.
func SetTag(setID int) string {
	return CacheTagSetPrefix + strconv.Itoa(setID)
}

// StructureKey builds the structure cache key for a set, store and
// configuration. The denylist hash is computed over the list in the order
// given.
func StructureKey(setID, storeID int, prefix string, requireVisible bool, denylist []string) string {
	var b strings.Builder
	b.WriteString(structureKeyPrefix)
	b.WriteString(strconv.Itoa(setID))
	b.WriteByte('_')
	b.WriteString(strconv.Itoa(storeID))
	b.WriteByte('_')
	b.WriteString(unsafeKeyChars.ReplaceAllString(prefix, "_"))
	if requireVisible {
		b.WriteString("_1_")
	} else {
		b.WriteString("_0_")
	}
	b.WriteString(denylistHash(denylist))
	return b.String()
}

func denylistHash(denylist []string) string {
	return shortHash([]byte(strings.Join(denylist, ",")))
}

// shortHash returns the first 32 hex characters of the SHA-256 of data.
func shortHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:32]
}

func sortedCopy(list []string) []string {
	out := slices.Clone(list)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return out
}
