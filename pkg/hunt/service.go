package hunt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/core"
	"treasurehunt/pkg/monitor"
	"treasurehunt/pkg/report"
	"treasurehunt/pkg/storage"
)

var (
	ErrRunNotFound = storage.ErrRunNotFound
	ErrNoHistory   = errors.New("hunt: run history is not configured")
)

// Run 是一次完整搜索的结果
type Run struct {
	ID         string
	Params     common.HuntParams
	StartedAt  time.Time
	Duration   time.Duration
	Found      int
	Partitions []common.Partition
	// Report 在 List 返回的摘要中为 nil
	Report *report.Report
}

// Service 负责编排：放置宝藏 -> 并行搜索 -> 生成报告 -> 记录指标 -> 持久化。
type Service struct {
	history storage.History
	metrics *monitor.Metrics
	logger  *slog.Logger
	newID   func() string
	// maxRegions 为 0 表示只受 core.MaxRegions 约束
	maxRegions int
}

type Option func(*Service)

// WithHistory persists every successful run.
func WithHistory(h storage.History) Option {
	return func(s *Service) { s.history = h }
}

func WithMetrics(m *monitor.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxRegions caps the region count Run accepts. Network servers set it so a
// single request cannot allocate an arbitrarily large map.
func WithMaxRegions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRegions = n
		}
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		logger: monitor.NopLogger(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run validates p, places p.Treasures treasures at random (seeded by p.Seed when non-zero)
// and searches the map with p.Groups groups.
func (s *Service) Run(ctx context.Context, p common.HuntParams, n core.Notifier) (*Run, error) {
	if err := core.Validate(p.Regions, p.Groups, p.Treasures); err != nil {
		return nil, err
	}
	if s.maxRegions > 0 && p.Regions > s.maxRegions {
		return nil, &core.ParamError{Field: "regions", Value: p.Regions, Min: 1, Max: s.maxRegions}
	}
	if core.LongRun(p.Regions, p.Treasures) {
		s.logger.Warn("large hunt, the run may take a long time",
			"regions", p.Regions, "treasures", p.Treasures)
	}

	rng, seed := core.NewRand(p.Seed)
	p.Seed = seed
	m := core.PlaceTreasures(p.Regions, p.Treasures, rng)
	return s.Search(ctx, p, m, n)
}

// Search runs the engine over an already built map. p.Regions and p.Treasures are
// taken from m.
func (s *Service) Search(ctx context.Context, p common.HuntParams, m *core.RegionMap, n core.Notifier) (*Run, error) {
	p.Regions = m.Len()
	p.Treasures = m.Treasures()
	if err := core.Validate(p.Regions, p.Groups, max(p.Treasures, 1)); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        s.newID(),
		Params:    p,
		StartedAt: time.Now(),
	}
	runLog := s.logger.With("run", run.ID)
	log := runLog.With("component", "hunt")

	eng := core.NewEngine(
		core.WithLogger(runLog),
		core.WithNotifier(n),
		core.WithMetrics(s.metrics),
	)
	res, err := eng.Search(ctx, m, p.Groups)
	if err != nil {
		s.observe("cancelled", run.StartedAt)
		return nil, fmt.Errorf("search: %w", err)
	}

	rep, err := report.Build(res.Discoveries)
	if err == nil {
		err = rep.Verify(m)
	}
	if err != nil {
		s.observe("failed", run.StartedAt)
		log.Error("inconsistent discoveries", "error", err)
		return nil, err
	}

	run.Report = rep
	run.Found = rep.Count()
	run.Partitions = res.Partitions
	run.Duration = time.Since(run.StartedAt)

	if s.history != nil {
		rec := &storage.RunRecord{
			ID:          run.ID,
			Params:      run.Params,
			StartedAt:   run.StartedAt,
			Duration:    run.Duration,
			Discoveries: rep.Discoveries,
		}
		if err := s.history.SaveRun(ctx, rec); err != nil {
			s.observe("failed", run.StartedAt)
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	s.observe("ok", run.StartedAt)
	log.Info("hunt finished", "found", run.Found, "duration", run.Duration)
	return run, nil
}

// Get loads a persisted run and rebuilds its report.
func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	rec, err := s.history.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	rep, err := report.Build(rec.Discoveries)
	if err != nil {
		return nil, err
	}
	run := fromRecord(rec)
	run.Report = rep
	run.Partitions = core.Partitions(rec.Params.Regions, rec.Params.Groups)
	return run, nil
}

// List returns run summaries, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*Run, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	recs, err := s.history.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*Run, len(recs))
	for i, rec := range recs {
		out[i] = fromRecord(rec)
	}
	return out, nil
}

func (s *Service) observe(status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveHunt(status, time.Since(start))
	}
}

func fromRecord(rec *storage.RunRecord) *Run {
	return &Run{
		ID:        rec.ID,
		Params:    rec.Params,
		StartedAt: rec.StartedAt,
		Duration:  rec.Duration,
		Found:     rec.Found,
	}
}
