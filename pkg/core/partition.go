package core

import "treasurehunt/pkg/common"

// Partitions 把 [0, regions) 切成 groups 个连续、不重叠、无间隙的区间。
// 每段长度为 ceil(regions/groups)，最后的区间可能更短；
// 当向上取整越过末尾时，尾部小组得到空区间（Start == End == regions）。
func Partitions(regions, groups int) []common.Partition {
	if groups <= 0 {
		return nil
	}
	if regions < 0 {
		regions = 0
	}
	size := (regions + groups - 1) / groups

	parts := make([]common.Partition, groups)
	for w := 0; w < groups; w++ {
		start := min(w*size, regions)
		end := min(start+size, regions)
		parts[w] = common.Partition{
			Group: common.GroupID(w),
			Start: common.RegionIndex(start),
			End:   common.RegionIndex(end),
		}
	}
	return parts
}
