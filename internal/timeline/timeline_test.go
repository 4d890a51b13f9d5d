package timeline

import (
	"testing"
	"time"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_EmptyMapsSpanFullRange(t *testing.T) {
	today := date(2024, time.June, 20)
	days := Generate(model.MemoryMap{}, nil, StartDate(), TargetEndDate(), today)

	want := int(TargetEndDate().Sub(StartDate()).Hours()/24) + 1
	if len(days) != want {
		t.Fatalf("len(days) = %d, want %d", len(days), want)
	}
	if !days[0].IsToday {
		t.Error("first day should be today")
	}
	for i, d := range days[1:] {
		if !d.IsFuture {
			t.Fatalf("day %d (%s) should be future", i+1, d.DateStr)
		}
	}
	if days[0].DateStr != "2024-06-20" || days[len(days)-1].DateStr != "2026-02-11" {
		t.Errorf("range = %s..%s", days[0].DateStr, days[len(days)-1].DateStr)
	}
}

func TestGenerate_TodayExtendsRange(t *testing.T) {
	today := date(2026, time.March, 1)
	days := Generate(model.MemoryMap{}, nil, StartDate(), TargetEndDate(), today)
	if got := days[len(days)-1].DateStr; got != "2026-03-01" {
		t.Errorf("last day = %s, want 2026-03-01", got)
	}
	if !days[len(days)-1].IsToday {
		t.Error("extended last day should be today")
	}
}

func TestGenerate_LateMemoryExtendsRange(t *testing.T) {
	memories := model.MemoryMap{
		"2026-05-20": {DateStr: "2026-05-20", Title: "纪念日", Mood: "喜悦"},
	}
	today := date(2024, time.July, 1)
	days := Generate(memories, nil, StartDate(), TargetEndDate(), today)

	last := days[len(days)-1]
	if last.DateStr != "2026-05-20" {
		t.Fatalf("last day = %s, want 2026-05-20", last.DateStr)
	}
	if !last.HasMemory || last.Memory == nil || last.Memory.Title != "纪念日" {
		t.Error("extended day should carry the memory")
	}
}

func TestGenerate_MalformedKeysSkipped(t *testing.T) {
	memories := model.MemoryMap{
		"not-a-date": {Title: "bad"},
		"2024-07-01": {DateStr: "2024-07-01", Title: "ok"},
	}
	today := date(2024, time.July, 1)
	days := Generate(memories, nil, StartDate(), TargetEndDate(), today)

	want := int(TargetEndDate().Sub(StartDate()).Hours()/24) + 1
	if len(days) != want {
		t.Fatalf("malformed key affected range: len=%d want=%d", len(days), want)
	}
}

func TestGenerate_MemoryBeforeStartExcluded(t *testing.T) {
	memories := model.MemoryMap{
		"2024-01-01": {DateStr: "2024-01-01", Title: "太早"},
	}
	days := Generate(memories, nil, StartDate(), TargetEndDate(), date(2024, time.June, 21))
	for _, d := range days {
		if d.DateStr == "2024-01-01" {
			t.Fatal("memory before start should be excluded from the range")
		}
	}
	if days[0].DateStr != "2024-06-20" {
		t.Errorf("first day = %s", days[0].DateStr)
	}
}

func TestGenerate_PartnerView(t *testing.T) {
	mine := model.MemoryMap{
		"2024-06-21": {DateStr: "2024-06-21", Title: "我的"},
	}
	partner := model.MemoryMap{
		"2024-06-21": {DateStr: "2024-06-21", Title: "TA的"},
		"2024-06-22": {DateStr: "2024-06-22", Title: "只有TA"},
	}
	days := Generate(mine, partner, StartDate(), TargetEndDate(), date(2024, time.June, 22))

	byDate := map[string]model.DayData{}
	for _, d := range days {
		byDate[d.DateStr] = d
	}

	both := byDate["2024-06-21"]
	if both.Memory == nil || both.PartnerMemory == nil {
		t.Fatal("2024-06-21 should carry both memories")
	}
	if both.Memory.Title != "我的" || both.PartnerMemory.Title != "TA的" {
		t.Error("memory ownership mixed up")
	}

	theirs := byDate["2024-06-22"]
	if theirs.Memory != nil || theirs.PartnerMemory == nil || !theirs.HasMemory {
		t.Error("partner-only day misreported")
	}
}

func TestGenerate_SingleViewNeverPopulatesPartner(t *testing.T) {
	mine := model.MemoryMap{"2024-06-21": {DateStr: "2024-06-21", Title: "我的"}}
	days := Generate(mine, nil, StartDate(), TargetEndDate(), date(2024, time.June, 21))
	for _, d := range days {
		if d.PartnerMemory != nil {
			t.Fatal("single view must not populate PartnerMemory")
		}
	}
}

func TestGenerate_TimeOfDayNormalized(t *testing.T) {
	// 当天 23:59 也应判定为 isToday，而不是把次日当成今天
	today := time.Date(2024, time.June, 20, 23, 59, 0, 0, time.UTC)
	days := Generate(model.MemoryMap{}, nil, StartDate(), TargetEndDate(), today)
	if !days[0].IsToday {
		t.Error("23:59 should still count as today")
	}
	if days[1].IsToday || !days[1].IsFuture {
		t.Error("next day misclassified")
	}
}

func TestDayIndex(t *testing.T) {
	if got := DayIndex(StartDate(), StartDate()); got != 1 {
		t.Errorf("day index of start = %d, want 1", got)
	}
	if got := DayIndex(date(2024, time.June, 30), StartDate()); got != 11 {
		t.Errorf("day index = %d, want 11", got)
	}
}
