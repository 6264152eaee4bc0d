package dataset

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	"github.com/permcatalog/edu-catalog/internal/config"
	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
	"github.com/permcatalog/edu-catalog/internal/logger"
	"github.com/permcatalog/edu-catalog/internal/metrics"
	"github.com/permcatalog/edu-catalog/internal/sentry"
)

// Reload statuses recorded in metrics.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusUnchanged = "unchanged"
)

// Snapshot is an immutable, fully loaded dataset. Callers must not modify it.
type Snapshot struct {
	Dataset  catalog.Dataset
	Regions  []string // display order
	Meta     map[string]string
	Version  string
	Source   string
	LoadedAt time.Time
}

// Rows returns the rows of a region.
func (s *Snapshot) Rows(region string) []catalog.Row {
	return s.Dataset.Rows(region)
}

// Store holds the active snapshot and replaces it atomically on reload.
type Store struct {
	src     Source
	pinned  []string
	log     *logger.Logger
	metrics *metrics.Metrics

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
	now     func() time.Time
}

// NewStore creates an empty store. Call Reload before serving.
func NewStore(src Source, pinned []string, log *logger.Logger, m *metrics.Metrics) *Store {
	return &Store{
		src:     src,
		pinned:  pinned,
		log:     log.WithModule("dataset"),
		metrics: m,
		now:     time.Now,
	}
}

// Current returns the active snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Snapshot returns the active snapshot or ErrNoSnapshot.
func (s *Store) Snapshot() (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return nil, domerrors.ErrNoSnapshot
}

// Reload loads the source when its version changed and swaps the snapshot.
// Concurrent calls share one load, which runs detached from the caller's
// cancellation and is bounded by the load timeouts alone. On failure the
// previous snapshot stays active and the error is returned.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	ch := s.group.DoChan("reload", func() (any, error) {
		return s.reload(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if shared {
		s.metrics.RecordSingleflightDedup("reload")
	}
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s *Store) reload(ctx context.Context) (bool, error) {
	start := s.now()
	name := s.src.Name()
	prev := s.current.Load()

	if prev != nil {
		vctx, cancel := context.WithTimeout(ctx, config.DatasetVersionCheck)
		version, err := s.src.Version(vctx)
		cancel()
		if err == nil && version != "" && version == prev.Version {
			s.metrics.RecordReload(name, StatusUnchanged, 0)
			return false, nil
		}
		if err != nil {
			s.log.WithError(err).WarnContext(ctx, "Dataset version check failed, loading anyway")
		}
	}

	lctx, cancel := context.WithTimeout(ctx, config.DatasetLoad)
	defer cancel()
	ds, version, err := s.src.Load(lctx)
	if err != nil {
		return false, s.fail(ctx, err)
	}

	snap := &Snapshot{
		Dataset:  ds,
		Regions:  catalog.OrderRegions(regionNames(ds), s.pinned),
		Version:  version,
		Source:   name,
		LoadedAt: s.now(),
	}
	if ms, ok := s.src.(MetadataSource); ok {
		snap.Meta = ms.Metadata()
	}
	s.current.Store(snap)

	counts := make(map[string]int, len(ds))
	for region, rows := range ds {
		counts[region] = len(rows)
	}
	s.metrics.RecordReload(name, StatusSuccess, s.now().Sub(start))
	s.metrics.SetDatasetRows(counts, snap.LoadedAt)

	s.log.WithFields(map[string]any{
		"source":  name,
		"version": version,
		"regions": len(snap.Regions),
		"rows":    ds.Count(),
	}).InfoContext(ctx, "Dataset loaded")
	return true, nil
}

func (s *Store) fail(ctx context.Context, err error) error {
	name := s.src.Name()
	err = domerrors.NewWrapper("dataset", "reload").Wrapf(err, "load from %s", name)

	s.metrics.RecordReload(name, StatusError, 0)
	sentry.CaptureWithTags(ctx, err, map[string]string{
		"source": name,
		"module": domerrors.ModuleOf(err),
	})

	entry := s.log.WithError(err).WithField("source", name)
	if prev := s.current.Load(); prev != nil {
		entry.WithField("version", prev.Version).ErrorContext(ctx, "Dataset reload failed, keeping previous snapshot")
	} else {
		entry.ErrorContext(ctx, "Dataset load failed")
	}
	return err
}

// Watch reloads on every tick until ctx is canceled. Errors are logged by
// Reload; the loop keeps going.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if changed, err := s.Reload(ctx); err == nil && changed {
				s.log.DebugContext(ctx, "Dataset changed")
			}
		}
	}
}

// Describe summarizes the active snapshot for readiness output.
func (s *Store) Describe() string {
	snap := s.current.Load()
	if snap == nil {
		return "no dataset"
	}
	return fmt.Sprintf("%s@%s (%d regions, loaded %s)", snap.Source, snap.Version, len(snap.Regions), snap.LoadedAt.Format(time.RFC3339))
}

func regionNames(ds catalog.Dataset) []string {
	names := make([]string, 0, len(ds))
	for name := range ds {
		names = append(names, name)
	}
	return names
}
