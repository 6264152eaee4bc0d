// Package web serves the catalog page, its live-search SSE channel and a
// small JSON API over the active dataset snapshot.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	"github.com/permcatalog/edu-catalog/internal/dataset"
	"github.com/permcatalog/edu-catalog/internal/logger"
	"github.com/permcatalog/edu-catalog/internal/metrics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Snapshotter yields the active dataset snapshot.
type Snapshotter interface {
	Snapshot() (*dataset.Snapshot, error)
}

// Options configures a Handler.
type Options struct {
	DefaultRegion    string
	VocationalPolicy catalog.VocationalPolicy
	DatastarURL      string
}

// Handler renders catalog views.
type Handler struct {
	store   Snapshotter
	opts    Options
	log     *logger.Logger
	metrics *metrics.Metrics
	tmpl    *template.Template
}

// New parses the embedded templates and returns a Handler.
func New(store Snapshotter, opts Options, log *logger.Logger, m *metrics.Metrics) (*Handler, error) {
	if opts.DefaultRegion == "" {
		opts.DefaultRegion = catalog.DefaultRegion
	}
	if opts.VocationalPolicy == "" {
		opts.VocationalPolicy = catalog.VocationalAuto
	}

	tmpl, err := template.New("catalog").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:   store,
		opts:    opts,
		log:     log.WithModule("web"),
		metrics: m,
		tmpl:    tmpl,
	}, nil
}

// Register mounts the catalog routes on r and installs the HTML renderer.
func (h *Handler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(h.tmpl)

	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))

	r.GET("/", h.Page)
	r.GET("/catalog/rows", h.Rows)

	api := r.Group("/api")
	api.GET("/regions", h.Regions)
	api.GET("/catalog", h.Catalog)
}
