package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
	"github.com/vnykmshr/pviewgroups/pkg/pview"
)

const pageKeyPrefix = "pview_page"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve product attribute groups over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := handleSignals(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.serve(ctx)
	},
}

func (a *app) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.handler(),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting attribute groups server", slog.String("addr", server.Addr))

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

func (a *app) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products/{sku}/attribute-groups", a.handleGroups)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.Handle("GET /debug/cache/structure/", a.structure.DebugHandler())
	mux.Handle("GET /debug/cache/page/", a.page.DebugHandler())
	if a.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// handleGroups renders the groups of a product. Responses are kept in the
// page cache, keyed by the view's cache key info and tagged with its
// identities, so attribute set flushes drop them.
func (a *app) handleGroups(w http.ResponseWriter, r *http.Request) {
	ctx := pview.WithRequestScope(r.Context())

	storeID := 1
	if raw := r.URL.Query().Get("store"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 0 {
			http.Error(w, "invalid store", http.StatusBadRequest)
			return
		}
		storeID = id
	}

	product, err := a.store.ProductBySKU(ctx, r.PathValue("sku"), storeID)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}

	info, err := a.view.CacheKeyInfo(product)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	key := pageKey(info)

	w.Header().Set("Content-Type", "application/json")
	if body, ok := a.page.Load(key); ok {
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(body)
		return
	}

	groups, err := a.view.Groups(ctx, product)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	body, err := json.Marshal(groups)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	body = append(body, '\n')
	if err := a.page.Save(body, key, a.view.Identities(product), 0); err != nil {
		slog.Warn("page cache save failed", slog.String("key", key), slog.Any("error", err))
	}
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(body)
}

func (a *app) fail(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// pageKey joins the sorted key info into a cache key.
func pageKey(info map[string]string) string {
	names := make([]string, 0, len(info))
	for name := range info {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(pageKeyPrefix)
	for _, name := range names {
		b.WriteByte('_')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(info[name])
	}
	return b.String()
}
