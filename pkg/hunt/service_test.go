package hunt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/core"
	"treasurehunt/pkg/monitor"
	"treasurehunt/pkg/storage"
)

func newTestService(t *testing.T) (*Service, *monitor.Metrics) {
	t.Helper()
	h, err := storage.OpenSQLiteHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	m := monitor.NewMetrics()
	return NewService(WithHistory(h), WithMetrics(m)), m
}

func TestRunFindsEveryTreasure(t *testing.T) {
	svc, metrics := newTestService(t)
	run, err := svc.Run(context.Background(), common.HuntParams{Regions: 200, Groups: 7, Treasures: 30, Seed: 11}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 30, run.Found)
	assert.Len(t, run.Report.Sorted(), 30)
	assert.Len(t, run.Partitions, 7)
	assert.Equal(t, int64(11), run.Params.Seed)

	// same seed, same placement
	again, err := svc.Run(context.Background(), common.HuntParams{Regions: 200, Groups: 3, Treasures: 30, Seed: 11}, nil)
	require.NoError(t, err)
	assert.Equal(t, run.Report.Sorted(), again.Report.Sorted())

	assert.Equal(t, 400.0, metricByName(t, metrics, "treasurehunt_regions_scanned_total"))
}

func metricByName(t *testing.T, m *monitor.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRunPicksSeed(t *testing.T) {
	svc := NewService()
	run, err := svc.Run(context.Background(), common.HuntParams{Regions: 10, Groups: 2, Treasures: 4}, nil)
	require.NoError(t, err)
	assert.NotZero(t, run.Params.Seed)
	assert.Equal(t, 4, run.Found)
}

func TestRunRejectsInvalidParams(t *testing.T) {
	svc := NewService()
	_, err := svc.Run(context.Background(), common.HuntParams{Regions: 10, Groups: 11, Treasures: 1}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParams)

	_, err = svc.Run(context.Background(), common.HuntParams{Regions: 10, Groups: 2, Treasures: 0}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParams)
}

func TestRunRegionLimit(t *testing.T) {
	svc := NewService(WithMaxRegions(1000))
	_, err := svc.Run(context.Background(), common.HuntParams{Regions: core.MaxRegions, Groups: 1, Treasures: 1}, nil)
	require.ErrorIs(t, err, core.ErrInvalidParams)
	var pe *core.ParamError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "regions", pe.Field)
	assert.Equal(t, 1000, pe.Max)

	run, err := svc.Run(context.Background(), common.HuntParams{Regions: 1000, Groups: 4, Treasures: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Found)
}

func TestSearchScenarioAndHistory(t *testing.T) {
	svc, _ := newTestService(t)
	cells := make([]bool, 10)
	cells[2], cells[5], cells[9] = true, true, true

	run, err := svc.Search(context.Background(), common.HuntParams{Groups: 3}, core.NewRegionMap(cells), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{3, 6, 10}, run.Report.Regions())
	assert.Equal(t, 10, run.Params.Regions)
	assert.Equal(t, 3, run.Params.Treasures)

	got, err := svc.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Report.Regions(), got.Report.Regions())
	assert.Equal(t, []int{3, 6, 10}, got.Report.Sorted())
	assert.Equal(t, run.Partitions, got.Partitions)

	runs, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Nil(t, runs[0].Report)
}

func TestGetMissingRun(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestHistoryNotConfigured(t *testing.T) {
	svc := NewService()
	_, err := svc.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoHistory)
	_, err = svc.List(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestRunCancelled(t *testing.T) {
	svc := NewService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, common.HuntParams{Regions: 5000, Groups: 4, Treasures: 5}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestViewJSONShape(t *testing.T) {
	svc := NewService()
	cells := []bool{true, false, false, true}
	run, err := svc.Search(context.Background(), common.HuntParams{Groups: 2}, core.NewRegionMap(cells), nil)
	require.NoError(t, err)

	v := run.View()
	assert.Equal(t, run.ID, v.ID)
	assert.Equal(t, 2, v.Found)
	assert.Equal(t, []int{1, 4}, v.Sorted)
	assert.Equal(t, []PartitionView{{Group: 1, Start: 0, End: 2}, {Group: 2, Start: 2, End: 4}}, v.Partitions)
	assert.Equal(t, map[int][]int{1: {1}, 2: {4}}, v.ByGroup)
}
