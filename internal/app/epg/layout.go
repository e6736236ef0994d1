package epg

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// OverlapPolicy 同一频道内节目时间重叠时的处理策略
type OverlapPolicy string

const (
	// OverlapAllow 不做处理，重叠的节目各自布局，显示时会相互覆盖
	OverlapAllow OverlapPolicy = "allow"
	// OverlapReport 布局不变，但在Layout.Overlaps中报告重叠
	OverlapReport OverlapPolicy = "report"
	// OverlapClip 按输入顺序，将后一个节目的开始时间裁剪到前面节目的结束时间
	OverlapClip OverlapPolicy = "clip"
)

// ParseOverlapPolicy 解析重叠策略，空字符串为OverlapAllow
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch p := OverlapPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OverlapAllow, nil
	case OverlapAllow, OverlapReport, OverlapClip:
		return p, nil
	default:
		return "", fmt.Errorf("unknown overlap policy %q", s)
	}
}

// LaidOutProgram 已计算位置的节目，偏移和宽度的单位均为格子
type LaidOutProgram struct {
	Program
	StartTime time.Time `json:"startTime"` // 显示时区的开始时间
	StopTime  time.Time `json:"stopTime"`  // 显示时区的结束时间
	Offset    float64   `json:"offset"`    // 相对时间轴起点的偏移，节目早于起点时为负数
	Width     float64   `json:"width"`     // 宽度，始终大于0
}

// Overlap 同一频道内时间重叠的两个节目
type Overlap struct {
	Channel string  `json:"channel"`
	First   Program `json:"first"`
	Second  Program `json:"second"`
}

// Layout 一次完整布局的结果，与搜索条件无关
type Layout struct {
	Axis     TimeAxis                    `json:"axis"`
	Location *time.Location              `json:"-"`
	Channels []string                    `json:"channels"`
	Rows     map[string][]LaidOutProgram `json:"rows"`
	Skipped  []Diagnostic                `json:"-"`
	Overlaps []Overlap                   `json:"overlaps,omitempty"`
}

// Len 返回已布局的节目数量
func (l *Layout) Len() int {
	n := 0
	for _, row := range l.Rows {
		n += len(row)
	}
	return n
}

// entry 带有输入下标的节目记录
type entry struct {
	index   int
	program Program
}

// RecomputeLayout 对全部节目执行一次完整的布局
//
// 单个节目的错误不会中断布局，这些节目会被跳过并记录在Layout.Skipped中。
func RecomputeLayout(records []Program, now time.Time, loc *time.Location, policy OverlapPolicy) Layout {
	if loc == nil {
		loc = time.UTC
	}

	var skipped []Diagnostic
	valid := make([]Program, 0, len(records))
	rows := make(map[string][]entry)
	for i, record := range records {
		if err := record.validate(); err != nil {
			skipped = append(skipped, Diagnostic{Index: i, Program: record, Err: err})
			continue
		}
		valid = append(valid, record)
		rows[record.Channel] = append(rows[record.Channel], entry{index: i, program: record})
	}

	axis := ComputeBounds(now, valid, loc)
	layout := layoutRows(rows, axis, loc, policy)
	layout.Skipped = append(skipped, layout.Skipped...)
	sortDiagnostics(layout.Skipped)
	return layout
}

// LayoutGroup 对已分组的节目计算位置
//
// Diagnostic.Index为节目按排序后的频道依次展开时的下标。
func LayoutGroup(group ChannelGroup, axis TimeAxis, loc *time.Location, policy OverlapPolicy) Layout {
	if loc == nil {
		loc = time.UTC
	}

	var skipped []Diagnostic
	rows := make(map[string][]entry, len(group))
	i := 0
	for _, channel := range group.Channels() {
		for _, record := range group[channel] {
			if err := record.validate(); err != nil {
				skipped = append(skipped, Diagnostic{Index: i, Program: record, Err: err})
			} else {
				rows[channel] = append(rows[channel], entry{index: i, program: record})
			}
			i++
		}
	}

	layout := layoutRows(rows, axis, loc, policy)
	layout.Skipped = append(skipped, layout.Skipped...)
	sortDiagnostics(layout.Skipped)
	return layout
}

func sortDiagnostics(d []Diagnostic) {
	sort.SliceStable(d, func(i, j int) bool { return d[i].Index < d[j].Index })
}

func layoutRows(rows map[string][]entry, axis TimeAxis, loc *time.Location, policy OverlapPolicy) Layout {
	layout := Layout{
		Axis:     axis,
		Location: loc,
		Rows:     make(map[string][]LaidOutProgram, len(rows)),
	}

	for _, channel := range sortedKeys(rows) {
		var (
			row      []LaidOutProgram
			lastStop time.Time // 本频道已布局节目中最晚的结束时间
			last     Program   // 结束时间为lastStop的节目
		)
		for _, e := range rows[channel] {
			start, err := DecodeTimestamp(e.program.Start, loc)
			if err != nil {
				layout.Skipped = append(layout.Skipped, Diagnostic{Index: e.index, Program: e.program, Err: err})
				continue
			}
			stop, err := DecodeTimestamp(e.program.Stop, loc)
			if err != nil {
				layout.Skipped = append(layout.Skipped, Diagnostic{Index: e.index, Program: e.program, Err: err})
				continue
			}
			if !stop.After(start) {
				layout.Skipped = append(layout.Skipped, Diagnostic{Index: e.index, Program: e.program, Err: ErrInvalidDuration})
				continue
			}

			if len(row) > 0 && start.Before(lastStop) {
				switch policy {
				case OverlapReport:
					layout.Overlaps = append(layout.Overlaps, Overlap{Channel: channel, First: last, Second: e.program})
				case OverlapClip:
					if !stop.After(lastStop) {
						layout.Skipped = append(layout.Skipped, Diagnostic{Index: e.index, Program: e.program, Err: ErrOverlap})
						continue
					}
					start = lastStop
				}
			}
			if stop.After(lastStop) {
				lastStop, last = stop, e.program
			}

			row = append(row, LaidOutProgram{
				Program:   e.program,
				StartTime: start,
				StopTime:  stop,
				Offset:    axis.Offset(start),
				Width:     float64(stop.Sub(start)) / float64(SlotDuration),
			})
		}
		if len(row) > 0 {
			layout.Rows[channel] = row
		}
	}

	layout.Channels = sortedKeys(layout.Rows)
	return layout
}
