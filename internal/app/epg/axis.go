package epg

import (
	"math"
	"time"
)

const (
	// SlotDuration 时间轴上每个格子的时长
	SlotDuration = 30 * time.Minute

	// LookBack 时间轴起点相对当前整点向前回看的时长，用于显示刚结束的节目
	LookBack = time.Hour
)

// TimeAxis 时间轴，由起点和格子数量完全确定
type TimeAxis struct {
	Origin    time.Time `json:"origin"`    // 第0个格子的起始时间
	SlotCount int       `json:"slotCount"` // 格子边界的数量，包含最后一个边界
}

// ComputeBounds 根据当前时间和节目数据计算时间轴
//
// 起点为当前时间所在整点再向前一小时；终点为所有节目中最晚的结束时间，
// 向上取整到格子边界。无法解析结束时间的节目不参与计算。
func ComputeBounds(now time.Time, records []Program, loc *time.Location) TimeAxis {
	if loc == nil {
		loc = time.UTC
	}
	origin := truncateHour(now.In(loc)).Add(-LookBack)

	axis := TimeAxis{Origin: origin, SlotCount: 1}
	var latest time.Time
	for _, record := range records {
		stop, err := DecodeTimestamp(record.Stop, loc)
		if err != nil {
			continue
		}
		if stop.After(latest) {
			latest = stop
		}
	}
	if latest.After(origin) {
		slots := math.Ceil(float64(latest.Sub(origin)) / float64(SlotDuration))
		axis.SlotCount = int(slots) + 1
	}
	return axis
}

// Slot 返回第i个格子边界的时间
func (a TimeAxis) Slot(i int) time.Time {
	return a.Origin.Add(time.Duration(i) * SlotDuration)
}

// Slots 返回全部格子边界的时间
func (a TimeAxis) Slots() []time.Time {
	slots := make([]time.Time, 0, a.SlotCount)
	for i := 0; i < a.SlotCount; i++ {
		slots = append(slots, a.Slot(i))
	}
	return slots
}

// End 返回最后一个格子边界的时间
func (a TimeAxis) End() time.Time {
	return a.Slot(a.SlotCount - 1)
}

// Equal 判断两个时间轴是否相同
func (a TimeAxis) Equal(b TimeAxis) bool {
	return a.SlotCount == b.SlotCount && a.Origin.Equal(b.Origin)
}

// Offset 计算指定时间相对起点的格子偏移量
func (a TimeAxis) Offset(t time.Time) float64 {
	return float64(t.Sub(a.Origin)) / float64(SlotDuration)
}

// truncateHour 取整到所在时区的整点，避免time.Truncate按UTC取整导致半小时时区出错
func truncateHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
