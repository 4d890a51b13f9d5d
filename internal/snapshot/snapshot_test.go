package snapshot

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

func TestExportDecode_RoundTrip(t *testing.T) {
	memories := model.MemoryMap{
		"2024-07-01": {
			DateStr: "2024-07-01", Title: "第一天", Description: "开始",
			Mood: "喜悦", Images: []string{"a"}, ImageURL: "a", Tags: []string{"起点"},
		},
	}
	moods := model.DefaultMoods()

	doc := Export(memories, moods, time.Date(2024, time.July, 2, 8, 0, 0, 0, time.UTC))
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got.Memories, memories) {
		t.Errorf("memories changed in round trip: %+v", got.Memories)
	}
	if !reflect.DeepEqual(got.MoodOptions, moods) {
		t.Error("mood options changed in round trip")
	}
	if got.AppVersion != AppVersion {
		t.Errorf("appVersion = %q", got.AppVersion)
	}
	if got.ExportedAt != "2024-07-02T08:00:00Z" {
		t.Errorf("exportedAt = %q", got.ExportedAt)
	}
}

func TestDecode_MissingMemoriesRejected(t *testing.T) {
	_, err := Decode([]byte(`{"moodOptions": [], "appVersion": "1.0"}`))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v, want ErrInvalidDocument", err)
	}
}

func TestDecode_MalformedJSONRejected(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	if err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestDecode_ToleratesMissingOptionalFields(t *testing.T) {
	doc, err := Decode([]byte(`{"memories": {"2024-07-01": {"dateStr": "2024-07-01", "title": "t", "description": "", "mood": "平淡", "tags": []}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Memories) != 1 || doc.MoodOptions != nil || doc.AppVersion != "" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestDecode_EmptyMemoriesAccepted(t *testing.T) {
	doc, err := Decode([]byte(`{"memories": {}}`))
	if err != nil {
		t.Fatalf("empty memories rejected: %v", err)
	}
	if len(doc.Memories) != 0 {
		t.Errorf("memories = %+v", doc.Memories)
	}
}
