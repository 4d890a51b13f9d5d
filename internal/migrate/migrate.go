// Package migrate 负责把旧版记录形态迁移到当前 schema。
// 纯函数，不做任何 I/O；是否回写由调用方根据 changed 标记决定。
package migrate

import "github.com/xiaotiyanlove-star/starriver/internal/model"

// legacyMoodMap 旧版英文心情标签到当前中文标签的映射，集合固定
var legacyMoodMap = map[string]string{
	"Joy":        "喜悦",
	"Calm":       "平静",
	"Melancholy": "忧郁",
	"Excited":    "兴奋",
	"Cozy":       "惬意",
	"Loved":      "被爱",
	"Neutral":    "平淡",
}

// Normalize 逐条迁移记忆映射，返回迁移后的映射以及是否发生过改写。
// 规则按序应用：
//  1. 旧版英文心情码改写为对应中文标签，未识别的原样保留；
//  2. imageUrl 非空且 images 缺失/为空时，补 images = [imageUrl]。
func Normalize(memories model.MemoryMap) (model.MemoryMap, bool) {
	out := make(model.MemoryMap, len(memories))
	changed := false

	for key, mem := range memories {
		if mapped, ok := legacyMoodMap[mem.Mood]; ok {
			mem.Mood = mapped
			changed = true
		}
		if mem.ImageURL != "" && len(mem.Images) == 0 {
			mem.Images = []string{mem.ImageURL}
			changed = true
		}
		out[key] = mem
	}

	return out, changed
}
