package core

import (
	"sync"

	"treasurehunt/pkg/common"
)

// SharedResults 是搜索阶段唯一的共享可变状态：一个由单把互斥锁保护的发现序列。
// 所有 worker 持有同一个指针；只有在 join 之后编排方才读取。
type SharedResults struct {
	mu    sync.Mutex
	items []common.Discovery
}

func newSharedResults(capacity int) *SharedResults {
	return &SharedResults{items: make([]common.Discovery, 0, capacity)}
}

// record appends under the guard. Hold time is one append.
func (r *SharedResults) record(d common.Discovery) {
	r.mu.Lock()
	r.items = append(r.items, d)
	r.mu.Unlock()
}

// take hands the sequence to the caller; only valid after every worker joined.
func (r *SharedResults) take() []common.Discovery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}
