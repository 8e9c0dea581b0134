package pview

import (
	"regexp"
	"strings"
)

// AttributeMeta is the product-independent part of an attribute in a group.
type AttributeMeta struct {
	Code      string `cbor:"code" json:"code"`
	Label     string `cbor:"label" json:"label"`
	SortOrder int    `cbor:"sort_order" json:"sort_order"`
}

// StructureGroup is one matched group with its surviving attributes.
type StructureGroup struct {
	Code       string          `cbor:"code" json:"code"`
	Title      string          `cbor:"title" json:"title"`
	SortOrder  int             `cbor:"sort_order" json:"sort_order"`
	Attributes []AttributeMeta `cbor:"attributes" json:"attributes"`
}

// Structure is the cached group layout of an attribute set for one store and
// configuration, ordered by group sort order.
type Structure []StructureGroup

// DisplayAttribute is an attribute resolved for a product.
type DisplayAttribute struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// DisplayGroup is a structure group resolved for a product. Only groups with
// at least one valued attribute are displayed.
type DisplayGroup struct {
	Code       string             `json:"code"`
	Title      string             `json:"title"`
	SortOrder  int                `json:"sort_order"`
	Attributes []DisplayAttribute `json:"attributes"`
}

var nonAlnumRun = regexp.MustCompile(`(?i)[^a-z0-9]+`)

// GroupCode derives a stable code from a group name.
func GroupCode(name string) string {
	return strings.ToLower(nonAlnumRun.ReplaceAllString(name, "_"))
}

// codes returns the distinct attribute codes in s, in first-seen order.
func (s Structure) codes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range s {
		for _, a := range g.Attributes {
			if _, ok := seen[a.Code]; ok {
				continue
			}
			seen[a.Code] = struct{}{}
			out = append(out, a.Code)
		}
	}
	return out
}
