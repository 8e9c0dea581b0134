package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
	"github.com/vnykmshr/pviewgroups/pkg/pview"
)

const testConfig = `
db:
  path: %DB%
cache:
  cleanup_interval: 0s
metrics:
  exporter: prometheus
  report_interval: 0s
log:
  level: error
default:
  catalog:
    product_view_attribute_groups:
      enabled: true
      require_visible_on_front: true
      denylist_csv: meta_keyword
`

func newTestApp(t *testing.T) (*app, int) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pview.yaml")
	cfg := strings.ReplaceAll(testConfig, "%DB%", filepath.Join(dir, "pview.db"))
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })

	a, err := newApp(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	setID, err := seedDemo(context.Background(), a.store)
	require.NoError(t, err)
	return a, setID
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeGroups(t *testing.T, rec *httptest.ResponseRecorder) []pview.DisplayGroup {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var groups []pview.DisplayGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	return groups
}

func titles(groups []pview.DisplayGroup) []string {
	out := []string{}
	for _, g := range groups {
		out = append(out, g.Title)
	}
	return out
}

func TestServeGroups(t *testing.T) {
	a, _ := newTestApp(t)
	h := a.handler()

	rec := get(t, h, "/products/"+demoSKU+"/attribute-groups")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	groups := decodeGroups(t, rec)
	require.Equal(t, []string{"Truck", "Trailer Hitch", "Cab"}, titles(groups))

	truck := groups[0]
	assert.Equal(t, "pview_truck", truck.Code)
	require.Len(t, truck.Attributes, 2)
	assert.Equal(t, "price", truck.Attributes[0].Code)
	assert.Contains(t, truck.Attributes[0].Value, "129,900.00")
	assert.Equal(t, pview.DisplayAttribute{Code: "axle_count", Label: "Axles", Value: "Three"}, truck.Attributes[1])

	assert.Equal(t, []pview.DisplayAttribute{{Code: "sleeper", Label: "Sleeper Cab", Value: "Yes"}}, groups[2].Attributes)

	rec = get(t, h, "/products/"+demoSKU+"/attribute-groups")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, []string{"Truck", "Trailer Hitch", "Cab"}, titles(decodeGroups(t, rec)))
}

func TestServeFlushDropsPages(t *testing.T) {
	a, setID := newTestApp(t)
	h := a.handler()

	decodeGroups(t, get(t, h, "/products/"+demoSKU+"/attribute-groups"))
	require.Equal(t, 1, a.page.Len())
	require.Equal(t, 1, a.structure.Len())

	require.NoError(t, a.flusher.FlushByAttributeSetID(context.Background(), setID))
	assert.Equal(t, 0, a.page.Len())
	assert.Equal(t, 0, a.structure.Len())

	rec := get(t, h, "/products/"+demoSKU+"/attribute-groups")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pview_flushes_total")
}

func TestServeGroupRename(t *testing.T) {
	ctx := context.Background()
	a, setID := newTestApp(t)
	h := a.handler()

	decodeGroups(t, get(t, h, "/products/"+demoSKU+"/attribute-groups"))

	groups, err := a.store.GroupsBySet(ctx, setID)
	require.NoError(t, err)
	var cab catalog.AttributeGroup
	for _, g := range groups {
		if g.Name == "pview_Cab" {
			cab = g
		}
	}
	require.NotZero(t, cab.ID)

	cab.Name = "Cabin"
	cab.Code = ""
	require.NoError(t, a.writer.SaveGroup(pview.WithRequestScope(ctx), &cab))
	assert.Equal(t, 0, a.page.Len())

	rec := get(t, h, "/products/"+demoSKU+"/attribute-groups")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, []string{"Truck", "Trailer Hitch"}, titles(decodeGroups(t, rec)))
}

func TestServeErrors(t *testing.T) {
	a, _ := newTestApp(t)
	h := a.handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/products/NOPE/attribute-groups").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/products/"+demoSKU+"/attribute-groups?store=x").Code)

	rec := get(t, h, "/debug/cache/page/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stats"`)
}

func TestPageKey(t *testing.T) {
	key := pageKey(map[string]string{"store_id": "1", "product_id": "7", "pview_cfg": "abc"})
	assert.Equal(t, "pview_page_product_id=7_pview_cfg=abc_store_id=1", key)
	assert.Equal(t, pageKeyPrefix, pageKey(nil))
}
