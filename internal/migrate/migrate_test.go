package migrate

import (
	"testing"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

func TestNormalize_LegacyMoods(t *testing.T) {
	cases := map[string]string{
		"Joy":        "喜悦",
		"Calm":       "平静",
		"Melancholy": "忧郁",
		"Excited":    "兴奋",
		"Cozy":       "惬意",
		"Loved":      "被爱",
		"Neutral":    "平淡",
	}

	in := model.MemoryMap{}
	i := 0
	for old := range cases {
		key := "2024-07-0" + string(rune('1'+i))
		in[key] = model.Memory{DateStr: key, Title: "t", Mood: old}
		i++
	}

	out, changed := Normalize(in)
	if !changed {
		t.Fatal("expected changed=true for legacy moods")
	}
	for key, mem := range in {
		want := cases[mem.Mood]
		if got := out[key].Mood; got != want {
			t.Errorf("mood %q: got %q, want %q", mem.Mood, got, want)
		}
	}
}

func TestNormalize_UnknownMoodPassesThrough(t *testing.T) {
	in := model.MemoryMap{
		"2024-08-01": {DateStr: "2024-08-01", Mood: "自定义心情", Images: []string{"a"}},
	}
	out, changed := Normalize(in)
	if changed {
		t.Error("expected changed=false when nothing to migrate")
	}
	if out["2024-08-01"].Mood != "自定义心情" {
		t.Errorf("unknown mood rewritten: %q", out["2024-08-01"].Mood)
	}
}

func TestNormalize_LegacySingleImage(t *testing.T) {
	in := model.MemoryMap{
		"2024-08-02": {DateStr: "2024-08-02", Mood: "平淡", ImageURL: "http://img/1.png"},
	}
	out, changed := Normalize(in)
	if !changed {
		t.Fatal("expected changed=true for legacy single image")
	}
	got := out["2024-08-02"]
	if len(got.Images) != 1 || got.Images[0] != "http://img/1.png" {
		t.Errorf("images = %v, want [http://img/1.png]", got.Images)
	}
}

func TestNormalize_ImagesAlreadyPresent(t *testing.T) {
	in := model.MemoryMap{
		"2024-08-03": {DateStr: "2024-08-03", Mood: "平淡", ImageURL: "old", Images: []string{"new"}},
	}
	out, changed := Normalize(in)
	if changed {
		t.Error("expected changed=false when images already populated")
	}
	if got := out["2024-08-03"].Images; len(got) != 1 || got[0] != "new" {
		t.Errorf("images overwritten: %v", got)
	}
}

func TestNormalize_EmptyMap(t *testing.T) {
	out, changed := Normalize(model.MemoryMap{})
	if changed || len(out) != 0 {
		t.Errorf("empty map: changed=%v len=%d", changed, len(out))
	}
}
