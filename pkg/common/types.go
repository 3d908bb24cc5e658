package common

import "fmt"

// RegionIndex 是区域的 0 基下标；对外展示时使用 Ordinal()（1 基）。
type RegionIndex int

// Ordinal 返回面向用户的 1 基编号
func (i RegionIndex) Ordinal() int {
	return int(i) + 1
}

// GroupID 是搜索小组（worker）的 0 基编号
type GroupID int

// Partition 是分配给某个小组的半开区间 [Start, End)
type Partition struct {
	Group GroupID
	Start RegionIndex
	End   RegionIndex
}

// Len 返回区间内的区域数，空区间为 0
func (p Partition) Len() int {
	if p.End <= p.Start {
		return 0
	}
	return int(p.End - p.Start)
}

// Empty 表示该小组没有需要搜索的区域
func (p Partition) Empty() bool {
	return p.Len() == 0
}

func (p Partition) String() string {
	return fmt.Sprintf("group %d [%d,%d)", int(p.Group)+1, p.Start, p.End)
}

// Discovery 是一条发现记录：Region 为 1 基编号
type Discovery struct {
	Region int     `json:"region"`
	Group  GroupID `json:"group"`
}

// Notification 是每个区域搜索完成后发出的事件
type Notification struct {
	Group  GroupID
	Region RegionIndex
	Found  bool
}

// String 保持原始输出格式
func (n Notification) String() string {
	if n.Found {
		return fmt.Sprintf("Group %d FOUND treasure in region %d", int(n.Group)+1, n.Region.Ordinal())
	}
	return fmt.Sprintf("Group %d did not find anything in region %d", int(n.Group)+1, n.Region.Ordinal())
}

// HuntParams 是一次搜索的输入参数
type HuntParams struct {
	Regions   int   `json:"regions" yaml:"regions"`
	Groups    int   `json:"groups" yaml:"groups"`
	Treasures int   `json:"treasures" yaml:"treasures"`
	Seed      int64 `json:"seed,omitempty" yaml:"seed"`
}
