// Package merge 实现两份独立记忆映射的确定性合并。
// 纯函数，不做任何 I/O；配对账号的远端合并与文件导入共用同一套规则。
package merge

import (
	"fmt"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

// DescriptionSeparator 同一天双方描述拼接时的分隔符
const DescriptionSeparator = "\n\n———— ✦ ————\n\n"

// Maps 合并两份记忆映射，local 不会被修改，返回新映射。
// 逐日规则（对 remote 中的每个日期）：
//   - local 缺席：整条采纳 remote；
//   - 标题与描述完全一致：视为重复，保留 local 原样；
//   - 冲突：标题拼为 "{local} & {remote}"（相同则保留），描述两段无损拼接，
//     图片去重合并（local 在前），心情与录音以 local 优先，tags 保留 local。
func Maps(local, remote model.MemoryMap) model.MemoryMap {
	out := make(model.MemoryMap, len(local)+len(remote))
	for key, mem := range local {
		out[key] = mem
	}

	for key, theirs := range remote {
		mine, exists := out[key]
		if !exists {
			out[key] = theirs
			continue
		}
		if mine.Title == theirs.Title && mine.Description == theirs.Description {
			// 完全相同的条目不再二次拼接
			continue
		}
		out[key] = mergeDay(mine, theirs)
	}
	return out
}

// mergeDay 同一天两条不同内容记录的字段级合并
func mergeDay(mine, theirs model.Memory) model.Memory {
	merged := mine

	if mine.Title != theirs.Title {
		merged.Title = fmt.Sprintf("%s & %s", mine.Title, theirs.Title)
	}
	merged.Description = mine.Description + DescriptionSeparator + theirs.Description

	merged.Images = unionImages(imagesOf(mine), imagesOf(theirs))
	if len(merged.Images) > 0 {
		merged.ImageURL = merged.Images[0]
	} else {
		merged.ImageURL = ""
	}

	// 单个心情字段装不下两个人的感受，冲突时保留本地
	if merged.VoiceNoteURL == "" {
		merged.VoiceNoteURL = theirs.VoiceNoteURL
	}
	return merged
}

// imagesOf 取图片列表，空时回落到旧版单图字段
func imagesOf(m model.Memory) []string {
	if len(m.Images) > 0 {
		return m.Images
	}
	if m.ImageURL != "" {
		return []string{m.ImageURL}
	}
	return nil
}

// unionImages 按值去重合并，本地图片排在前面
func unionImages(mine, theirs []string) []string {
	seen := make(map[string]bool, len(mine)+len(theirs))
	var out []string
	for _, lst := range [][]string{mine, theirs} {
		for _, img := range lst {
			if seen[img] {
				continue
			}
			seen[img] = true
			out = append(out, img)
		}
	}
	return out
}

// MoodOptions 合并心情选项：remote 中 label 本地不存在的按其原顺序追加，
// 既有选项从不改写或删除。
func MoodOptions(local, remote []model.MoodOption) []model.MoodOption {
	known := make(map[string]bool, len(local))
	for _, opt := range local {
		known[opt.Label] = true
	}

	out := make([]model.MoodOption, len(local), len(local)+len(remote))
	copy(out, local)
	for _, opt := range remote {
		if known[opt.Label] {
			continue
		}
		out = append(out, opt)
	}
	return out
}
