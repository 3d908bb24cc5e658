package memory

import (
	"sync"

	"github.com/google/btree"

	"treasurehunt/pkg/common"
)

type Item struct {
	Region int
	Group  common.GroupID
}

func (i Item) Less(than btree.Item) bool {
	return i.Region < than.(Item).Region
}

// DiscoveryIndex 按区域编号有序保存发现记录，用于生成升序报告和查重。
type DiscoveryIndex struct {
	tree *btree.BTree
	lock sync.RWMutex
}

func NewDiscoveryIndex(degree int) *DiscoveryIndex {
	return &DiscoveryIndex{
		tree: btree.New(degree),
	}
}

// Put inserts d and reports false if the region was already present.
func (idx *DiscoveryIndex) Put(d common.Discovery) bool {
	idx.lock.Lock()
	defer idx.lock.Unlock()

	prev := idx.tree.ReplaceOrInsert(Item{Region: d.Region, Group: d.Group})
	return prev == nil
}

func (idx *DiscoveryIndex) Get(region int) (common.Discovery, bool) {
	idx.lock.RLock()
	defer idx.lock.RUnlock()

	res := idx.tree.Get(Item{Region: region})
	if res == nil {
		return common.Discovery{}, false
	}
	it := res.(Item)
	return common.Discovery{Region: it.Region, Group: it.Group}, true
}

// Ascend visits discoveries in ascending region order until fn returns false.
func (idx *DiscoveryIndex) Ascend(fn func(d common.Discovery) bool) {
	idx.lock.RLock()
	defer idx.lock.RUnlock()

	idx.tree.Ascend(func(i btree.Item) bool {
		it := i.(Item)
		return fn(common.Discovery{Region: it.Region, Group: it.Group})
	})
}

// Range visits regions in [from, to).
func (idx *DiscoveryIndex) Range(from, to int, fn func(d common.Discovery) bool) {
	idx.lock.RLock()
	defer idx.lock.RUnlock()

	idx.tree.AscendRange(Item{Region: from}, Item{Region: to}, func(i btree.Item) bool {
		it := i.(Item)
		return fn(common.Discovery{Region: it.Region, Group: it.Group})
	})
}

func (idx *DiscoveryIndex) Count() int {
	idx.lock.RLock()
	defer idx.lock.RUnlock()
	return idx.tree.Len()
}
