package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	"github.com/permcatalog/edu-catalog/internal/ctxutil"
	"github.com/permcatalog/edu-catalog/internal/dataset"
)

// Template names.
const (
	tmplPage          = "page"
	tmplCatalogBody   = "catalog-body"
	tmplEmptyState    = "empty-state"
	tmplRegionButtons = "region-buttons"
)

// rowSignals are the datastar signals sent by the search box and the region
// buttons.
type rowSignals struct {
	Region string `json:"region"`
	Q      string `json:"q"`
}

type pageData struct {
	DatastarURL string
	Signals     string
	Buttons     regionButtons
	View        catalog.View
}

type regionButtons struct {
	Query   string
	Regions []regionButton
}

type regionButton struct {
	Name   string
	Active bool
}

// Page renders the full catalog page for ?region=&q=. Without JavaScript the
// search form and region links fall back to plain GET navigation.
func (h *Handler) Page(c *gin.Context) {
	snap, ok := h.snapshot(c, "page")
	if !ok {
		return
	}

	v := h.view(c, "page", snap, c.Query("region"), c.Query("q"))
	signals, err := json.Marshal(rowSignals{Region: v.Region, Q: v.Query})
	if err != nil {
		h.fail(c, "page", err)
		return
	}

	c.HTML(http.StatusOK, tmplPage, pageData{
		DatastarURL: h.opts.DatastarURL,
		Signals:     string(signals),
		Buttons:     buttons(snap.Regions, v),
		View:        v,
	})
}

// Rows is the datastar endpoint behind the debounced search box and the
// region buttons. It patches the table body, the empty-state element and the
// region buttons, then syncs the resolved region back into the signals.
func (h *Handler) Rows(c *gin.Context) {
	// Signals must be read before the SSE writer takes over the response.
	var signals rowSignals
	if err := datastar.ReadSignals(c.Request, &signals); err != nil {
		h.metrics.RecordHTTPError("bad_signals", "rows")
		h.log.WithError(err).DebugContext(c.Request.Context(), "Invalid datastar signals")
		c.String(http.StatusBadRequest, "invalid signals")
		return
	}

	snap, ok := h.snapshot(c, "rows")
	if !ok {
		return
	}
	v := h.view(c, "rows", snap, signals.Region, signals.Q)

	fragments := make([]string, 0, 3)
	for _, f := range []struct {
		name string
		data any
	}{
		{tmplCatalogBody, v},
		{tmplEmptyState, v},
		{tmplRegionButtons, buttons(snap.Regions, v)},
	} {
		html, err := h.fragment(f.name, f.data)
		if err != nil {
			h.fail(c, "rows", err)
			return
		}
		fragments = append(fragments, html)
	}

	sse := datastar.NewSSE(c.Writer, c.Request)
	for _, html := range fragments {
		if err := sse.PatchElements(html); err != nil {
			h.log.WithError(err).DebugContext(c.Request.Context(), "Client went away during patch")
			return
		}
	}
	if err := sse.MarshalAndPatchSignals(map[string]string{"region": v.Region}); err != nil {
		h.log.WithError(err).DebugContext(c.Request.Context(), "Client went away during signal patch")
	}
}

// Regions lists region names in display order.
func (h *Handler) Regions(c *gin.Context) {
	snap, ok := h.snapshot(c, "regions")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"regions": snap.Regions,
		"default": catalog.PickRegion(snap.Regions, "", h.opts.DefaultRegion),
		"version": snap.Version,
	})
}

// Catalog returns the filtered, grouped view of one region as JSON.
func (h *Handler) Catalog(c *gin.Context) {
	snap, ok := h.snapshot(c, "catalog")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.view(c, "catalog", snap, c.Query("region"), c.Query("q")))
}

// view resolves the region and builds the filtered view, recording metrics.
// The resolved region is attached to the request context for logging.
func (h *Handler) view(c *gin.Context, endpoint string, snap *dataset.Snapshot, requested, query string) catalog.View {
	start := time.Now()

	region := catalog.PickRegion(snap.Regions, requested, h.opts.DefaultRegion)
	c.Request = c.Request.WithContext(ctxutil.WithRegion(c.Request.Context(), region))

	v := catalog.BuildView(snap.Rows(region), query, h.opts.VocationalPolicy)
	v.Region = region

	h.metrics.RecordRender(endpoint, time.Since(start))
	h.metrics.RecordSearch(v.Query, len(v.Rows))
	return v
}

func (h *Handler) snapshot(c *gin.Context, endpoint string) (*dataset.Snapshot, bool) {
	snap, err := h.store.Snapshot()
	if err != nil {
		h.metrics.RecordHTTPError("not_loaded", endpoint)
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded"})
		return nil, false
	}
	return snap, true
}

func (h *Handler) fail(c *gin.Context, endpoint string, err error) {
	h.metrics.RecordHTTPError("render", endpoint)
	h.log.WithError(err).WithField("endpoint", endpoint).ErrorContext(c.Request.Context(), "Render failed")
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}

func (h *Handler) fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buttons(regions []string, v catalog.View) regionButtons {
	out := regionButtons{Query: v.Query, Regions: make([]regionButton, 0, len(regions))}
	for _, r := range regions {
		out.Regions = append(out.Regions, regionButton{Name: r, Active: r == v.Region})
	}
	return out
}
