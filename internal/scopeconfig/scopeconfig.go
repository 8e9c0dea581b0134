// Package scopeconfig reads store-scoped settings from viper.
//
// A setting path such as "catalog/product_view_attribute_groups/prefix" is
// looked up under "stores.<id>." first and then under "default.":
//
//	default:
//	  catalog:
//	    product_view_attribute_groups:
//	      enabled: true
//	stores:
//	  "2":
//	    catalog:
//	      product_view_attribute_groups:
//	        prefix: spec_
package scopeconfig

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// Store implements catalog.ScopeConfig over a viper instance.
type Store struct {
	v *viper.Viper
}

// New wraps v. A nil v uses an empty instance.
func New(v *viper.Viper) *Store {
	if v == nil {
		v = viper.New()
	}
	return &Store{v: v}
}

// Value returns the most specific configured value of path for storeID.
func (s *Store) Value(path string, storeID int) (string, bool) {
	key, ok := s.resolve(path, storeID)
	if !ok {
		return "", false
	}
	return s.v.GetString(key), true
}

// IsSetFlag reports whether path is configured to a truthy value.
func (s *Store) IsSetFlag(path string, storeID int) bool {
	key, ok := s.resolve(path, storeID)
	if !ok {
		return false
	}
	return s.v.GetBool(key)
}

// Set stores value for path at storeID, or at the default scope when storeID
// is catalog.DefaultStoreID.
func (s *Store) Set(path string, storeID int, value any) {
	s.v.Set(scopedKey(path, storeID), value)
}

func (s *Store) resolve(path string, storeID int) (string, bool) {
	if storeID != catalog.DefaultStoreID {
		if key := scopedKey(path, storeID); s.v.IsSet(key) {
			return key, true
		}
	}
	key := scopedKey(path, catalog.DefaultStoreID)
	return key, s.v.IsSet(key)
}

func scopedKey(path string, storeID int) string {
	dotted := strings.ReplaceAll(strings.Trim(path, "/"), "/", ".")
	if storeID == catalog.DefaultStoreID {
		return "default." + dotted
	}
	return "stores." + strconv.Itoa(storeID) + "." + dotted
}

var _ catalog.ScopeConfig = (*Store)(nil)
