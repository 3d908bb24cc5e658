package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/core"
)

func scenario() []common.Discovery {
	return []common.Discovery{
		{Region: 6, Group: 1},
		{Region: 3, Group: 0},
		{Region: 10, Group: 2},
	}
}

func TestBuildKeepsDiscoveryOrder(t *testing.T) {
	r, err := Build(scenario())
	require.NoError(t, err)

	assert.Equal(t, 3, r.Count())
	assert.Equal(t, []int{6, 3, 10}, r.Regions())
	assert.Equal(t, []int{3, 6, 10}, r.Sorted())

	g, ok := r.FoundBy(10)
	require.True(t, ok)
	assert.Equal(t, common.GroupID(2), g)

	assert.Equal(t, map[common.GroupID][]int{0: {3}, 1: {6}, 2: {10}}, r.ByGroup())
}

func TestBuildRejectsDuplicates(t *testing.T) {
	_, err := Build([]common.Discovery{{Region: 4}, {Region: 4, Group: 1}})
	assert.ErrorIs(t, err, ErrDuplicateDiscovery)
}

func TestVerify(t *testing.T) {
	cells := make([]bool, 10)
	cells[2], cells[5], cells[9] = true, true, true
	m := core.NewRegionMap(cells)

	r, err := Build(scenario())
	require.NoError(t, err)
	assert.NoError(t, r.Verify(m))

	missing, err := Build(scenario()[:2])
	require.NoError(t, err)
	assert.ErrorIs(t, missing.Verify(m), ErrIncomplete)

	wrong, err := Build([]common.Discovery{{Region: 3}, {Region: 6}, {Region: 7}})
	require.NoError(t, err)
	assert.ErrorIs(t, wrong.Verify(m), ErrIncomplete)

	outside, err := Build([]common.Discovery{{Region: 3}, {Region: 6}, {Region: 11}})
	require.NoError(t, err)
	assert.ErrorIs(t, outside.Verify(m), ErrIncomplete)
}

func TestWriteText(t *testing.T) {
	r, err := Build(scenario())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf, false))
	assert.Equal(t, "\nTreasures have been found in following regions:\n6 3 10\n", buf.String())

	buf.Reset()
	require.NoError(t, r.WriteText(&buf, true))
	assert.Equal(t, "\nTreasures have been found in following regions:\n3 6 10\n", buf.String())
}
