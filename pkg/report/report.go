package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/core"
	"treasurehunt/pkg/core/memory"
)

const (
	btreeDegree = 32
	header      = "Treasures have been found in following regions:"
)

var (
	ErrDuplicateDiscovery = errors.New("report: region discovered more than once")
	ErrIncomplete         = errors.New("report: discoveries do not match the region map")
)

// Report 是一次搜索的最终结果：Discoveries 保留发现顺序，index 提供按区域升序的视图。
type Report struct {
	Discoveries []common.Discovery
	index       *memory.DiscoveryIndex
}

// Build indexes the discoveries and rejects any region reported twice.
func Build(discoveries []common.Discovery) (*Report, error) {
	r := &Report{
		Discoveries: discoveries,
		index:       memory.NewDiscoveryIndex(btreeDegree),
	}
	for _, d := range discoveries {
		if !r.index.Put(d) {
			return nil, fmt.Errorf("%w: region %d", ErrDuplicateDiscovery, d.Region)
		}
	}
	return r, nil
}

// Verify 检查完整性：每个宝藏区域恰好出现一次，且没有多余区域。
func (r *Report) Verify(m *core.RegionMap) error {
	if r.index.Count() != m.Treasures() {
		return fmt.Errorf("%w: found %d, placed %d", ErrIncomplete, r.index.Count(), m.Treasures())
	}
	var bad error
	r.index.Ascend(func(d common.Discovery) bool {
		if d.Region < 1 || d.Region > m.Len() || !m.HasTreasure(common.RegionIndex(d.Region-1)) {
			bad = fmt.Errorf("%w: region %d has no treasure", ErrIncomplete, d.Region)
			return false
		}
		return true
	})
	return bad
}

func (r *Report) Count() int {
	return len(r.Discoveries)
}

// Regions returns 1-based indices in discovery order.
func (r *Report) Regions() []int {
	out := make([]int, len(r.Discoveries))
	for i, d := range r.Discoveries {
		out[i] = d.Region
	}
	return out
}

// Sorted returns 1-based indices in ascending order.
func (r *Report) Sorted() []int {
	out := make([]int, 0, r.index.Count())
	r.index.Ascend(func(d common.Discovery) bool {
		out = append(out, d.Region)
		return true
	})
	return out
}

// ByGroup 按小组聚合，组内升序
func (r *Report) ByGroup() map[common.GroupID][]int {
	out := make(map[common.GroupID][]int)
	r.index.Ascend(func(d common.Discovery) bool {
		out[d.Group] = append(out[d.Group], d.Region)
		return true
	})
	return out
}

// FoundBy reports which group discovered region (1-based).
func (r *Report) FoundBy(region int) (common.GroupID, bool) {
	d, ok := r.index.Get(region)
	return d.Group, ok
}

// WriteText 输出与命令行版本一致的结果段落；sorted 为 true 时按区域升序。
func (r *Report) WriteText(w io.Writer, sorted bool) error {
	regions := r.Regions()
	if sorted {
		regions = r.Sorted()
	}
	parts := make([]string, len(regions))
	for i, v := range regions {
		parts[i] = strconv.Itoa(v)
	}
	_, err := fmt.Fprintf(w, "\n%s\n%s\n", header, strings.Join(parts, " "))
	return err
}
