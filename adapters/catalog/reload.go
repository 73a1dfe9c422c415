package catalog

import (
	"context"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"freight-cost/core/determinism"
	"freight-cost/internal/errors"
)

// Reloader re-reads a catalog file on a cron schedule and hands every changed,
// successfully parsed version to apply. A file that fails to load is logged and
// the previously applied catalog stays in effect.
type Reloader struct {
	path     string
	schedule string
	apply    func(*Catalog)
	logger   *zap.Logger
	cron     *cron.Cron

	mu   sync.Mutex
	last determinism.ContentHash
	seen bool
}

// NewReloader creates a reloader. An empty schedule is valid and only supports
// explicit Reload calls.
func NewReloader(path, schedule string, apply func(*Catalog), logger *zap.Logger) (*Reloader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, errors.Wrapf(errors.TypeConfig, err, "invalid catalog reload schedule %q", schedule)
		}
	}
	return &Reloader{
		path:     path,
		schedule: schedule,
		apply:    apply,
		logger:   logger,
		cron:     cron.New(),
	}, nil
}

// Reload loads the file and applies it when its content changed since the last
// applied version. It reports whether a new catalog was applied.
func (r *Reloader) Reload() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return false, errors.Wrap(errors.TypeCatalog, "failed to read catalog", err).WithContext("path", r.path)
	}
	hash := determinism.ComputeHash(data)
	if r.seen && hash == r.last {
		return false, nil
	}

	cat, err := Load(r.path)
	if err != nil {
		return false, err
	}
	for _, issue := range cat.Validate() {
		r.logger.Warn("catalog issue", zap.String("issue", issue.String()))
	}

	r.apply(cat)
	r.last = hash
	r.seen = true

	r.logger.Info("catalog loaded",
		zap.String("path", r.path),
		zap.String("hash", hash.Hex()[:12]),
		zap.Int("snapshots", len(cat.Snapshots)))
	return true, nil
}

// Start begins scheduled reloads. It is a no-op without a schedule.
func (r *Reloader) Start() error {
	if r.schedule == "" {
		return nil
	}
	_, err := r.cron.AddFunc(r.schedule, func() {
		if _, err := r.Reload(); err != nil {
			r.logger.Error("catalog reload failed, keeping previous catalog", zap.Error(err))
		}
	})
	if err != nil {
		return errors.Wrapf(errors.TypeConfig, err, "failed to schedule catalog reload %q", r.schedule)
	}
	r.cron.Start()
	r.logger.Info("catalog reload scheduled", zap.String("schedule", r.schedule))
	return nil
}

// Stop waits for a running reload to finish and stops the schedule
func (r *Reloader) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
