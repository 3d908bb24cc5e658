package hunt

import (
	"time"

	"treasurehunt/pkg/common"
)

// View 是 Run 的 JSON 形式，供 HTTP/TCP 接口使用
type View struct {
	ID         string            `json:"id"`
	Params     common.HuntParams `json:"params"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMS float64           `json:"duration_ms"`
	Found      int               `json:"found"`
	Regions    []int             `json:"regions,omitempty"`
	Sorted     []int             `json:"sorted,omitempty"`
	Partitions []PartitionView   `json:"partitions,omitempty"`
	ByGroup    map[int][]int     `json:"by_group,omitempty"`
}

type PartitionView struct {
	Group int `json:"group"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// PartitionViews converts partitions to their 1-based group JSON form.
func PartitionViews(parts []common.Partition) []PartitionView {
	out := make([]PartitionView, len(parts))
	for i, p := range parts {
		out[i] = PartitionView{Group: int(p.Group) + 1, Start: int(p.Start), End: int(p.End)}
	}
	return out
}

func (r *Run) View() View {
	v := View{
		ID:         r.ID,
		Params:     r.Params,
		StartedAt:  r.StartedAt,
		DurationMS: float64(r.Duration) / float64(time.Millisecond),
		Found:      r.Found,
		Partitions: PartitionViews(r.Partitions),
	}
	if r.Report != nil {
		v.Regions = r.Report.Regions()
		v.Sorted = r.Report.Sorted()
		v.ByGroup = make(map[int][]int)
		for g, regions := range r.Report.ByGroup() {
			v.ByGroup[int(g)+1] = regions
		}
	}
	return v
}
