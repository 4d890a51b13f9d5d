package storage

import (
	"fmt"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/xiaotiyanlove-star/starriver/internal/model"
)

func setupTestStore(t *testing.T) (*LocalStore, func()) {
	t.Helper()

	dbPath := fmt.Sprintf("/tmp/starriver_test_%d.db", time.Now().UnixNano())
	store, err := NewLocalStore(dbPath)
	if err != nil {
		t.Fatalf("Init LocalStore Error: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(dbPath)
	}
	return store, cleanup
}

func TestLocalStore_GetSetRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Errorf("missing key: ok=%v err=%v", ok, err)
	}

	if err := store.Set("k", `{"a":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := store.Get("k")
	if err != nil || !ok || got != `{"a":1}` {
		t.Errorf("get = (%q, %v, %v)", got, ok, err)
	}

	// 同键覆盖写
	if err := store.Set("k", `{"a":2}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = store.Get("k")
	if got != `{"a":2}` {
		t.Errorf("overwrite lost: %q", got)
	}
}

func TestLocalStore_MemoriesRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	empty, err := store.LoadMemories()
	if err != nil || len(empty) != 0 {
		t.Fatalf("fresh store: %v %v", empty, err)
	}

	memories := model.MemoryMap{
		"2024-07-01": {
			DateStr: "2024-07-01", Title: "第一天", Description: "开始",
			Mood: "喜悦", Images: []string{"a", "b"}, ImageURL: "a", Tags: []string{"起点"},
		},
	}
	if err := store.SaveMemories(memories); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadMemories()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, memories) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLocalStore_PartnerMirrorIsSeparate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	mine := model.MemoryMap{"2024-07-01": {DateStr: "2024-07-01", Title: "我的"}}
	theirs := model.MemoryMap{"2024-07-02": {DateStr: "2024-07-02", Title: "TA的"}}

	if err := store.SaveMemories(mine); err != nil {
		t.Fatal(err)
	}
	if err := store.SavePartnerMemories(theirs); err != nil {
		t.Fatal(err)
	}

	gotMine, _ := store.LoadMemories()
	gotTheirs, _ := store.LoadPartnerMemories()
	if _, ok := gotMine["2024-07-02"]; ok {
		t.Error("partner memory leaked into owner map")
	}
	if gotTheirs["2024-07-02"].Title != "TA的" {
		t.Errorf("partner mirror lost: %+v", gotTheirs)
	}
}

func TestLocalStore_MoodsDefaultThenCustom(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	moods, err := store.LoadMoods()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if len(moods) != 7 || moods[0].Label != "喜悦" {
		t.Errorf("default moods = %+v", moods)
	}

	custom := append(moods, model.MoodOption{Label: "想念", ColorClass: "bg-violet-200", BaseColor: "violet"})
	if err := store.SaveMoods(custom); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := store.LoadMoods()
	if len(got) != 8 || got[7].Label != "想念" {
		t.Errorf("custom moods = %+v", got)
	}
}

func TestLocalStore_ThemePassthrough(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	id, err := store.ThemeID()
	if err != nil || id != "" {
		t.Errorf("fresh theme = (%q, %v)", id, err)
	}
	if err := store.SetThemeID("midnight"); err != nil {
		t.Fatal(err)
	}
	id, _ = store.ThemeID()
	if id != "midnight" {
		t.Errorf("theme = %q", id)
	}
}
