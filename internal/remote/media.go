package remote

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// IsDataURL 判断字段内容是否为内联编码的媒体（data URL）
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURL 把 data URL 还原为 MIME 类型和原始字节
func DecodeDataURL(s string) (mimeType string, data []byte, err error) {
	header, payload, found := strings.Cut(s, ",")
	if !found || !strings.HasPrefix(header, "data:") {
		return "", nil, fmt.Errorf("不是合法的 data URL")
	}

	mimeType = "application/octet-stream"
	meta := strings.TrimPrefix(header, "data:")
	if mt, _, _ := strings.Cut(meta, ";"); mt != "" {
		mimeType = mt
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("base64 解码失败: %w", err)
	}
	return mimeType, data, nil
}

// extByMIME 常见媒体类型的文件后缀，未知类型统一用 .bin
func extByMIME(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "audio/webm":
		return ".webm"
	case "audio/mpeg":
		return ".mp3"
	case "audio/mp4":
		return ".m4a"
	case "audio/wav":
		return ".wav"
	}
	return ".bin"
}
