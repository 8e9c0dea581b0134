// Package catalog defines the EAV catalog model and the collaborator
// contracts the product view attribute groups layer depends on.
package catalog

import (
	"context"
	"errors"
)

// ProductEntityTypeID is the entity type id of catalog products.
const ProductEntityTypeID = 4

// DefaultStoreID is the admin (global) store scope.
const DefaultStoreID = 0

// ProductCacheTag prefixes the identity tag of a product.
const ProductCacheTag = "catalog_product"

var (
	// ErrNotFound is returned by lookups by id or sku when nothing matches.
	ErrNotFound = errors.New("catalog: not found")
	// ErrAlreadyExists is returned when a unique code or sku is taken.
	ErrAlreadyExists = errors.New("catalog: already exists")
)

// Frontend input types with special handling.
const (
	InputText     = "text"
	InputTextarea = "textarea"
	InputSelect   = "select"
	InputBoolean  = "boolean"
	InputPrice    = "price"
)

// AttributeSet is a named template grouping attributes for an entity type.
type AttributeSet struct {
	ID           int
	Name         string
	EntityTypeID int
}

// AttributeGroup is a named bucket within an attribute set.
//
// OrigName and OrigCode hold the persisted values before a pending change,
// so writers can tell what a group used to be called.
type AttributeGroup struct {
	ID        int
	SetID     int
	Name      string
	Code      string
	SortOrder int
	OrigName  string
	OrigCode  string
}

// DisplayName returns the group name, falling back to its code.
func (g AttributeGroup) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.Code
}

// OrigDisplayName is DisplayName for the persisted values.
func (g AttributeGroup) OrigDisplayName() string {
	if g.OrigName != "" {
		return g.OrigName
	}
	return g.OrigCode
}

// Option is one choice of a select attribute.
type Option struct {
	Value string
	Label string
}

// Attribute describes a product field.
type Attribute struct {
	ID               int
	EntityTypeID     int
	Code             string
	FrontendInput    string
	FrontendLabel    string
	StoreLabel       string
	IsVisibleOnFront bool
	// SortOrder is the position within the group when loaded through a group.
	SortOrder int
	Options   []Option
}

// Label returns the store label, falling back to the frontend label.
func (a Attribute) Label() string {
	if a.StoreLabel != "" {
		return a.StoreLabel
	}
	return a.FrontendLabel
}

// EntityAttribute assigns an attribute to a group within a set.
type EntityAttribute struct {
	ID           int
	EntityTypeID int
	SetID        int
	GroupID      int
	AttributeID  int
	SortOrder    int
	// OrigGroupID is the group the attribute was in before the change, 0 if new.
	OrigGroupID int
}

// Product is a catalog entity with raw attribute data.
type Product struct {
	ID             int
	SKU            string
	StoreID        int
	AttributeSetID int
	Data           map[string]any
}

// Value returns the raw value for an attribute code and whether it is set.
func (p Product) Value(code string) (any, bool) {
	if p.Data == nil {
		return nil, false
	}
	v, ok := p.Data[code]
	return v, ok
}

// Store is a storefront scope.
type Store struct {
	ID   int
	Code string
	Name string
}

// GroupStore reads attribute groups.
type GroupStore interface {
	GroupsBySet(ctx context.Context, setID int) ([]AttributeGroup, error)
	GroupByID(ctx context.Context, groupID int) (AttributeGroup, error)
}

// GroupWriter persists attribute groups.
type GroupWriter interface {
	SaveGroup(ctx context.Context, group *AttributeGroup) error
	DeleteGroup(ctx context.Context, group AttributeGroup) error
}

// AttributeStore reads attribute metadata.
type AttributeStore interface {
	// AttributesInGroup returns the attributes assigned to a group of a set,
	// with SortOrder set to the assignment position and StoreLabel resolved
	// for the store.
	AttributesInGroup(ctx context.Context, entityTypeID, setID, groupID, storeID int) ([]Attribute, error)
	// AttributesByCode loads attributes in one call, keyed by code. Unknown
	// codes are absent from the result.
	AttributesByCode(ctx context.Context, entityTypeID int, codes []string, storeID int) (map[string]Attribute, error)
	// EntityTypeID resolves an entity type code, reporting false when unknown.
	EntityTypeID(ctx context.Context, code string) (int, bool, error)
}

// FrontendRenderer renders the frontend value of an attribute for a product.
// The result may be a string, a fmt.Stringer, a bool, a number or nil.
type FrontendRenderer interface {
	Render(ctx context.Context, attr Attribute, product Product) (any, error)
}

// StoreLister enumerates storefronts.
type StoreLister interface {
	Stores(ctx context.Context) ([]Store, error)
}

// ScopeConfig reads store-scoped settings. Value reports false when the path
// is not configured at any scope.
type ScopeConfig interface {
	Value(path string, storeID int) (string, bool)
	IsSetFlag(path string, storeID int) bool
}

// CurrencyFormatter formats an amount in the store currency.
type CurrencyFormatter interface {
	Format(ctx context.Context, amount float64, storeID int) string
}
