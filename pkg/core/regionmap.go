package core

import (
	"math/rand/v2"

	"treasurehunt/pkg/common"
)

// RegionMap 在搜索开始前构建完成，之后只读，可被所有 worker 无锁共享。
type RegionMap struct {
	cells     []bool
	treasures int
}

// NewRegionMap wraps an explicit layout. The slice is copied.
func NewRegionMap(cells []bool) *RegionMap {
	m := &RegionMap{cells: make([]bool, len(cells))}
	copy(m.cells, cells)
	for _, c := range m.cells {
		if c {
			m.treasures++
		}
	}
	return m
}

// PlaceTreasures 随机选择 treasures 个互不相同的区域。
// 使用部分 Fisher–Yates：前 i 个槽位是已选区域，其余为候选池，每一步在剩余池中均匀抽取。
// 候选池是稀疏的，只记录被交换过的槽位，额外内存为 O(treasures)。
// 调用方须保证 1 <= treasures <= regions。
func PlaceTreasures(regions, treasures int, rng *rand.Rand) *RegionMap {
	m := &RegionMap{cells: make([]bool, regions), treasures: treasures}

	swapped := make(map[int]int, treasures)
	slot := func(k int) int {
		if v, ok := swapped[k]; ok {
			return v
		}
		return k
	}
	for i := 0; i < treasures; i++ {
		j := i + rng.IntN(regions-i)
		picked := slot(j)
		swapped[j] = slot(i)
		delete(swapped, i)
		m.cells[picked] = true
	}
	return m
}

// NewRand returns a PCG source for the given seed; seed 0 picks a random one.
func NewRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = rand.Int64()
		if seed == 0 {
			seed = 1
		}
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)), seed
}

func (m *RegionMap) Len() int {
	return len(m.cells)
}

// Treasures 返回地图上的宝藏总数
func (m *RegionMap) Treasures() int {
	return m.treasures
}

func (m *RegionMap) HasTreasure(i common.RegionIndex) bool {
	return m.cells[i]
}

// TreasureRegions lists the 1-based indices of every treasure, ascending.
func (m *RegionMap) TreasureRegions() []int {
	out := make([]int, 0, m.treasures)
	for i, c := range m.cells {
		if c {
			out = append(out, i+1)
		}
	}
	return out
}
