package pview

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
	"github.com/vnykmshr/pviewgroups/pkg/tagcache"
)

type assignment struct {
	code      string
	sortOrder int
}

// fakeCatalog is an in-memory catalog implementing the store contracts.
type fakeCatalog struct {
	groups      map[int]catalog.AttributeGroup
	attributes  map[string]catalog.Attribute
	assignments map[int][]assignment
	stores      []catalog.Store
	noEntity    bool

	byCodeCalls  int
	inGroupCalls int
	bySetCalls   int
	byIDCalls    int
	saved        []catalog.AttributeGroup
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		groups:      map[int]catalog.AttributeGroup{},
		attributes:  map[string]catalog.Attribute{},
		assignments: map[int][]assignment{},
	}
}

func (f *fakeCatalog) addGroup(id, setID int, name string, sortOrder int) {
	f.groups[id] = catalog.AttributeGroup{ID: id, SetID: setID, Name: name, SortOrder: sortOrder}
}

func (f *fakeCatalog) addAttribute(attr catalog.Attribute) {
	attr.EntityTypeID = catalog.ProductEntityTypeID
	f.attributes[attr.Code] = attr
}

func (f *fakeCatalog) assign(groupID int, code string, sortOrder int) {
	f.assignments[groupID] = append(f.assignments[groupID], assignment{code: code, sortOrder: sortOrder})
}

func (f *fakeCatalog) GroupsBySet(_ context.Context, setID int) ([]catalog.AttributeGroup, error) {
	f.bySetCalls++
	var out []catalog.AttributeGroup
	for _, g := range f.groups {
		if g.SetID == setID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) GroupByID(_ context.Context, groupID int) (catalog.AttributeGroup, error) {
	f.byIDCalls++
	g, ok := f.groups[groupID]
	if !ok {
		return catalog.AttributeGroup{}, catalog.ErrNotFound
	}
	return g, nil
}

func (f *fakeCatalog) SaveGroup(_ context.Context, group *catalog.AttributeGroup) error {
	if group.ID == 0 {
		group.ID = len(f.groups) + 100
	}
	stored := *group
	stored.OrigName, stored.OrigCode = "", ""
	f.groups[group.ID] = stored
	f.saved = append(f.saved, *group)
	return nil
}

func (f *fakeCatalog) DeleteGroup(_ context.Context, group catalog.AttributeGroup) error {
	if _, ok := f.groups[group.ID]; !ok {
		return catalog.ErrNotFound
	}
	delete(f.groups, group.ID)
	return nil
}

func (f *fakeCatalog) AttributesInGroup(_ context.Context, _, setID, groupID, _ int) ([]catalog.Attribute, error) {
	f.inGroupCalls++
	if g, ok := f.groups[groupID]; !ok || g.SetID != setID {
		return nil, nil
	}
	var out []catalog.Attribute
	for _, a := range f.assignments[groupID] {
		attr, ok := f.attributes[a.code]
		if !ok {
			continue
		}
		attr.SortOrder = a.sortOrder
		out = append(out, attr)
	}
	return out, nil
}

func (f *fakeCatalog) AttributesByCode(_ context.Context, _ int, codes []string, _ int) (map[string]catalog.Attribute, error) {
	f.byCodeCalls++
	out := make(map[string]catalog.Attribute, len(codes))
	for _, c := range codes {
		if attr, ok := f.attributes[c]; ok {
			out[c] = attr
		}
	}
	return out, nil
}

func (f *fakeCatalog) EntityTypeID(_ context.Context, code string) (int, bool, error) {
	if f.noEntity || code != ProductEntityTypeCode {
		return 0, false, nil
	}
	return catalog.ProductEntityTypeID, true, nil
}

func (f *fakeCatalog) Stores(context.Context) ([]catalog.Store, error) {
	return f.stores, nil
}

// fakeScopeConfig resolves store values over default values.
type fakeScopeConfig map[int]map[string]string

func (f fakeScopeConfig) set(storeID int, path, value string) {
	if f[storeID] == nil {
		f[storeID] = map[string]string{}
	}
	f[storeID][path] = value
}

func (f fakeScopeConfig) Value(path string, storeID int) (string, bool) {
	if v, ok := f[storeID][path]; ok {
		return v, true
	}
	v, ok := f[catalog.DefaultStoreID][path]
	return v, ok
}

func (f fakeScopeConfig) IsSetFlag(path string, storeID int) bool {
	v, _ := f.Value(path, storeID)
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

type fakeCurrency struct{}

func (fakeCurrency) Format(_ context.Context, amount float64, _ int) string {
	return fmt.Sprintf("$%.2f", amount)
}

// recordingPageCache records page cache cleans.
type recordingPageCache struct {
	modes []tagcache.CleanMode
	tags  [][]string
}

func (r *recordingPageCache) CleanMatching(mode tagcache.CleanMode, tags []string) error {
	r.modes = append(r.modes, mode)
	r.tags = append(r.tags, tags)
	return nil
}

func newStructureCache(t *testing.T) *tagcache.Cache {
	t.Helper()
	cache, err := tagcache.New(tagcache.NewDefaultConfig().WithCleanupInterval(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

// truckFixture is a set with Truck, Trailer and Empty groups and a product
// valued in the first two.
type truckFixture struct {
	catalog *fakeCatalog
	scope   fakeScopeConfig
	config  *Config
	cache   *tagcache.Cache
	page    *recordingPageCache
	product catalog.Product
}

const fixtureSetID = 9

func newTruckFixture(t *testing.T) *truckFixture {
	t.Helper()
	cat := newFakeCatalog()
	cat.addGroup(1, fixtureSetID, "General", 1)
	cat.addGroup(2, fixtureSetID, "pview_Truck", 10)
	cat.addGroup(3, fixtureSetID, "pview_Trailer", 20)
	cat.addGroup(4, fixtureSetID, "pview_Empty", 30)

	cat.addAttribute(catalog.Attribute{ID: 1, Code: "name", FrontendInput: catalog.InputText, FrontendLabel: "Name", IsVisibleOnFront: true})
	cat.addAttribute(catalog.Attribute{ID: 2, Code: "meta_description", FrontendInput: catalog.InputTextarea, FrontendLabel: "Meta Description", IsVisibleOnFront: true})
	cat.addAttribute(catalog.Attribute{ID: 3, Code: "meta_keyword", FrontendInput: catalog.InputTextarea, FrontendLabel: "Meta Keywords", IsVisibleOnFront: true})
	cat.addAttribute(catalog.Attribute{ID: 4, Code: "axle_count", FrontendInput: catalog.InputText, FrontendLabel: "Axles", IsVisibleOnFront: true})

	cat.assign(1, "name", 1)
	cat.assign(2, "meta_description", 1)
	cat.assign(3, "meta_keyword", 1)
	cat.assign(4, "axle_count", 1)

	scope := fakeScopeConfig{}
	scope.set(catalog.DefaultStoreID, PathEnabled, "1")
	scope.set(catalog.DefaultStoreID, PathRequireVisibleOnFront, "1")

	return &truckFixture{
		catalog: cat,
		scope:   scope,
		config:  NewConfig(scope),
		cache:   newStructureCache(t),
		page:    &recordingPageCache{},
		product: catalog.Product{
			ID:             42,
			SKU:            "pview-test-product",
			StoreID:        1,
			AttributeSetID: fixtureSetID,
			Data: map[string]any{
				"name":             "Pview Test Product",
				"meta_description": "Truck value",
				"meta_keyword":     "Trailer value",
			},
		},
	}
}

func (f *truckFixture) provider(t *testing.T, opts ...ProviderOption) *GroupProvider {
	t.Helper()
	p, err := NewGroupProvider(f.config, f.catalog, f.catalog, NewAttributeValueResolver(nil, fakeCurrency{}), f.cache, opts...)
	require.NoError(t, err)
	return p
}

func (f *truckFixture) flusher() *CacheFlusher {
	return NewCacheFlusher(f.cache, f.page)
}

func (f *truckFixture) helper() *FlushHelper {
	return NewFlushHelper(f.config, f.catalog, f.catalog)
}
