// Package timeline 根据记忆映射生成完整的日历时间线。
package timeline

import (
	"time"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

// DateLayout 日期键的规范格式
const DateLayout = "2006-01-02"

// StartDate 时间线起点：2024-06-20
func StartDate() time.Time {
	return time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
}

// TargetEndDate 时间线默认终点：2026-02-11
func TargetEndDate() time.Time {
	return time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC)
}

// startOfDay 把时刻归一到当日零点再做逐日比较
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Generate 生成从 start 到有效终点（含）的逐日序列。
// 有效终点 = max(targetEnd, today, 两侧记忆映射中可解析的最大日期)。
// 无法解析的日期键直接跳过，不影响生成。partner 传 nil 表示单人视图，
// 此时 PartnerMemory 恒为空。早于 start 的记忆不会出现在序列中。
func Generate(memories, partner model.MemoryMap, start, targetEnd, today time.Time) []model.DayData {
	start = startOfDay(start)
	today = startOfDay(today)
	end := startOfDay(targetEnd)

	if today.After(end) {
		end = today
	}
	if last, ok := latestMemoryDate(memories, partner); ok && last.After(end) {
		end = last
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1
	if totalDays < 1 {
		totalDays = 1
	}

	days := make([]model.DayData, 0, totalDays)
	for i := 0; i < totalDays; i++ {
		date := start.AddDate(0, 0, i)
		dateStr := date.Format(DateLayout)

		day := model.DayData{
			Date:     date,
			DateStr:  dateStr,
			IsToday:  date.Equal(today),
			IsPast:   date.Before(today),
			IsFuture: date.After(today),
		}
		if mem, ok := memories[dateStr]; ok {
			m := mem
			day.Memory = &m
			day.HasMemory = true
		}
		if partner != nil {
			if mem, ok := partner[dateStr]; ok {
				m := mem
				day.PartnerMemory = &m
				day.HasMemory = true
			}
		}
		days = append(days, day)
	}
	return days
}

// DayIndex 返回日期相对起点的天序号（起点当天为第 1 天）
func DayIndex(date, start time.Time) int {
	return int(startOfDay(date).Sub(startOfDay(start)).Hours()/24) + 1
}

// latestMemoryDate 取两侧映射中可解析日期键的最大值
func latestMemoryDate(maps ...model.MemoryMap) (time.Time, bool) {
	var last time.Time
	found := false
	for _, m := range maps {
		for key := range m {
			d, err := time.ParseInLocation(DateLayout, key, time.UTC)
			if err != nil {
				continue // 畸形日期键静默丢弃
			}
			if !found || d.After(last) {
				last = d
				found = true
			}
		}
	}
	return last, found
}
