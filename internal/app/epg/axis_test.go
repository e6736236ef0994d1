package epg

import (
	"testing"
	"time"
)

func TestComputeBounds(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
	records := []Program{
		{Title: "a", Channel: "1", Start: "20240101090000 +0000", Stop: "20240101100000 +0000"},
		{Title: "b", Channel: "2", Start: "20240101220000 +0000", Stop: "20240101230000 +0000"},
		{Title: "c", Channel: "2", Start: "20240101100000 +0000", Stop: "bad"},
	}

	axis := ComputeBounds(now, records, time.UTC)

	wantOrigin := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if !axis.Origin.Equal(wantOrigin) {
		t.Errorf("Origin = %v, want %v", axis.Origin, wantOrigin)
	}
	// 09:00..23:00 共28个格子，29个边界
	if axis.SlotCount != 29 {
		t.Errorf("SlotCount = %d, want 29", axis.SlotCount)
	}
	if end := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC); !axis.End().Equal(end) {
		t.Errorf("End() = %v, want %v", axis.End(), end)
	}
}

func TestComputeBoundsRoundsUp(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 59, 0, 0, time.UTC)
	records := []Program{
		{Title: "a", Channel: "1", Start: "20240101100000 +0000", Stop: "20240101111000 +0000"},
	}
	axis := ComputeBounds(now, records, time.UTC)
	// 起点09:00，11:10向上取整到11:30，共5个格子
	if axis.SlotCount != 6 {
		t.Errorf("SlotCount = %d, want 6", axis.SlotCount)
	}
	if axis.End().Before(time.Date(2024, 1, 1, 11, 10, 0, 0, time.UTC)) {
		t.Errorf("End() = %v is before the latest stop", axis.End())
	}
}

func TestComputeBoundsEmpty(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
	axis := ComputeBounds(now, nil, time.UTC)
	if axis.SlotCount != 1 {
		t.Errorf("SlotCount = %d, want 1", axis.SlotCount)
	}
	if !axis.End().Equal(axis.Origin) {
		t.Errorf("End() = %v, want origin %v", axis.End(), axis.Origin)
	}
}

func TestComputeBoundsAllInPast(t *testing.T) {
	now := time.Date(2024, 1, 2, 10, 15, 0, 0, time.UTC)
	records := []Program{
		{Title: "a", Channel: "1", Start: "20240101090000 +0000", Stop: "20240101100000 +0000"},
	}
	if axis := ComputeBounds(now, records, time.UTC); axis.SlotCount != 1 {
		t.Errorf("SlotCount = %d, want 1", axis.SlotCount)
	}
}

func TestComputeBoundsUsesDisplayZone(t *testing.T) {
	// 印度时区相对UTC偏移半小时，整点应按当地时间取整
	ist := time.FixedZone("IST", 5*3600+30*60)
	now := time.Date(2024, 1, 1, 4, 50, 0, 0, time.UTC) // 当地10:20
	axis := ComputeBounds(now, nil, ist)

	want := time.Date(2024, 1, 1, 9, 0, 0, 0, ist)
	if !axis.Origin.Equal(want) {
		t.Errorf("Origin = %v, want %v", axis.Origin, want)
	}
}

func TestTimeAxisSlots(t *testing.T) {
	origin := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	axis := TimeAxis{Origin: origin, SlotCount: 3}
	slots := axis.Slots()
	if len(slots) != 3 {
		t.Fatalf("len(Slots()) = %d, want 3", len(slots))
	}
	for i, slot := range slots {
		if want := origin.Add(time.Duration(i) * 30 * time.Minute); !slot.Equal(want) {
			t.Errorf("Slots()[%d] = %v, want %v", i, slot, want)
		}
	}
}
