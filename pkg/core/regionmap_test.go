package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/pkg/common"
)

func countTreasures(m *RegionMap) int {
	n := 0
	for i := 0; i < m.Len(); i++ {
		if m.HasTreasure(common.RegionIndex(i)) {
			n++
		}
	}
	return n
}

func TestPlaceTreasuresExactCount(t *testing.T) {
	for run := 0; run < 200; run++ {
		rng, _ := NewRand(0)
		m := PlaceTreasures(10, 3, rng)
		require.Equal(t, 10, m.Len())
		require.Equal(t, 3, countTreasures(m))
		require.Equal(t, 3, m.Treasures())
	}
}

func TestPlaceTreasuresEveryRegion(t *testing.T) {
	rng, _ := NewRand(7)
	m := PlaceTreasures(16, 16, rng)
	assert.Equal(t, 16, countTreasures(m))
	assert.Len(t, m.TreasureRegions(), 16)
}

func TestPlaceTreasuresSeedReproducible(t *testing.T) {
	rngA, seedA := NewRand(1234)
	rngB, seedB := NewRand(1234)
	assert.Equal(t, int64(1234), seedA)
	assert.Equal(t, seedA, seedB)

	a := PlaceTreasures(500, 40, rngA)
	b := PlaceTreasures(500, 40, rngB)
	assert.Equal(t, a.TreasureRegions(), b.TreasureRegions())
}

func TestPlaceTreasuresFewInLargeMap(t *testing.T) {
	rng, _ := NewRand(31)
	m := PlaceTreasures(1<<22, 5, rng)
	got := m.TreasureRegions()
	require.Len(t, got, 5)
	for _, r := range got {
		assert.True(t, r >= 1 && r <= 1<<22)
	}
	assert.Equal(t, 5, m.Treasures())
}

func TestNewRandPicksSeed(t *testing.T) {
	_, seed := NewRand(0)
	assert.NotZero(t, seed)
}

func TestPlaceTreasuresRoughlyUniform(t *testing.T) {
	const (
		regions = 10
		runs    = 20000
	)
	rng, _ := NewRand(99)
	hits := make([]int, regions)
	for i := 0; i < runs; i++ {
		m := PlaceTreasures(regions, 1, rng)
		hits[m.TreasureRegions()[0]-1]++
	}
	// expected 2000 per region; a loose bound keeps the test stable
	for i, h := range hits {
		assert.InDelta(t, runs/regions, h, 300, "region %d", i+1)
	}
}

func TestNewRegionMapCopiesInput(t *testing.T) {
	cells := []bool{false, true, false, true}
	m := NewRegionMap(cells)
	cells[0] = true

	assert.False(t, m.HasTreasure(0))
	assert.Equal(t, 2, m.Treasures())
	assert.Equal(t, []int{2, 4}, m.TreasureRegions())
}
