package core

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/monitor"
)

// ctxCheckInterval 控制 worker 多久检查一次取消信号
const ctxCheckInterval = 1024

// Engine 是分区并行搜索引擎：每个分区一个 worker，发现结果写入共享序列，join 后交还调用方。
type Engine struct {
	logger   *slog.Logger
	notifier Notifier
	metrics  *monitor.Metrics
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithMetrics 接入 Prometheus 指标；nil 表示不采集
func WithMetrics(m *monitor.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:   slog.New(slog.DiscardHandler),
		notifier: NopNotifier(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Result is owned by the caller once Search returns.
type Result struct {
	Partitions  []common.Partition
	Discoveries []common.Discovery
	Scanned     int
	Duration    time.Duration
}

// Regions returns the 1-based region indices in discovery order.
func (r *Result) Regions() []int {
	out := make([]int, len(r.Discoveries))
	for i, d := range r.Discoveries {
		out[i] = d.Region
	}
	return out
}

// Search 启动 groups 个 worker 扫描 m，并在全部 worker 退出后返回结果。
// groups 须在 [1, m.Len()] 内（由调用方校验）。唯一的错误来源是 ctx 取消，
// 此时不返回部分结果。
func (e *Engine) Search(ctx context.Context, m *RegionMap, groups int) (*Result, error) {
	start := time.Now()
	parts := Partitions(m.Len(), groups)
	shared := newSharedResults(m.Treasures())
	// 每个 worker 只写自己的槽位，Wait 之后读取
	scanned := make([]int, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range parts {
		g.Go(func() error {
			n, err := e.searchRegions(gctx, m, p, shared)
			scanned[p.Group] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Warn("search aborted", "regions", m.Len(), "groups", groups, "error", err)
		return nil, err
	}

	res := &Result{
		Partitions:  parts,
		Discoveries: shared.take(),
		Duration:    time.Since(start),
	}
	for _, n := range scanned {
		res.Scanned += n
	}
	e.logger.Info("search completed",
		"regions", m.Len(),
		"groups", groups,
		"found", len(res.Discoveries),
		"duration", res.Duration,
	)
	return res, nil
}

// searchRegions 扫描单个分区。地图只读，无需加锁；只有追加发现时持有共享锁，
// 读取和通知都在锁外完成。
func (e *Engine) searchRegions(ctx context.Context, m *RegionMap, p common.Partition, shared *SharedResults) (int, error) {
	if e.metrics != nil {
		e.metrics.WorkerStarted()
		defer e.metrics.WorkerFinished()
	}
	e.logger.Debug("group started", "group", int(p.Group)+1, "start", int(p.Start), "end", int(p.End))

	scanned, found := 0, 0
	for i := p.Start; i < p.End; i++ {
		// 分区越界即结束，不算错误
		if int(i) >= m.Len() {
			break
		}
		if scanned%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return scanned, err
			}
		}

		hit := m.HasTreasure(i)
		if hit {
			shared.record(common.Discovery{Region: i.Ordinal(), Group: p.Group})
			found++
		}
		e.notifier.Notify(common.Notification{Group: p.Group, Region: i, Found: hit})
		scanned++
	}

	if e.metrics != nil {
		e.metrics.ObserveScan(scanned, found)
	}
	e.logger.Debug("group finished", "group", int(p.Group)+1, "scanned", scanned, "found", found)
	return scanned, nil
}
