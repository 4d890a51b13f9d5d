// Package snapshot 定义可移植的记忆快照文档及其编解码。
// 导入文档一律视为不可信输入：先做结构校验，通过后才允许进入合并流程。
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

// AppVersion 写入导出文档的 schema 版本标记
const AppVersion = "1.2.0"

// ErrInvalidDocument 文档缺少 memories 字段或不是合法 JSON
var ErrInvalidDocument = errors.New("快照文档格式错误: 缺少 memories 字段")

// Document 快照文档。moodOptions 与 appVersion 允许缺失（向后兼容）。
type Document struct {
	Memories    model.MemoryMap    `json:"memories"`
	MoodOptions []model.MoodOption `json:"moodOptions,omitempty"`
	ExportedAt  string             `json:"exportedAt"`
	AppVersion  string             `json:"appVersion,omitempty"`
}

// Export 把当前本地状态打包为一份快照文档
func Export(memories model.MemoryMap, moods []model.MoodOption, now time.Time) Document {
	return Document{
		Memories:    memories,
		MoodOptions: moods,
		ExportedAt:  now.UTC().Format(time.RFC3339),
		AppVersion:  AppVersion,
	}
}

// Decode 解析并校验一份快照文档。memories 字段缺席视为格式错误，
// 此时不返回任何部分结果。
func Decode(data []byte) (Document, error) {
	// 用指针区分「字段缺失」与「空映射」
	var probe struct {
		Memories    *model.MemoryMap   `json:"memories"`
		MoodOptions []model.MoodOption `json:"moodOptions"`
		ExportedAt  string             `json:"exportedAt"`
		AppVersion  string             `json:"appVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("快照文档解析失败: %w", err)
	}
	if probe.Memories == nil {
		return Document{}, ErrInvalidDocument
	}

	return Document{
		Memories:    *probe.Memories,
		MoodOptions: probe.MoodOptions,
		ExportedAt:  probe.ExportedAt,
		AppVersion:  probe.AppVersion,
	}, nil
}
