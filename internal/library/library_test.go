package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"howett.net/plist"
)

func TestLibraryOrder(t *testing.T) {
	lib := New()
	lib.Add(30, Track{KeyTrackID: int64(30)})
	lib.Add(10, Track{KeyTrackID: int64(10)})
	lib.Add(20, Track{KeyTrackID: int64(20)})
	lib.Add(10, Track{KeyTrackID: int64(10), KeyName: "replaced"})

	want := []int64{30, 10, 20}
	var got []int64
	for id := range lib.All() {
		got = append(got, id)
	}
	if len(got) != len(want) {
		t.Fatalf("All() yielded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	track, _ := lib.Get(10)
	if name, _ := track.String(KeyName); name != "replaced" {
		t.Errorf("Name = %q, want %q", name, "replaced")
	}
}

func TestLibraryAllStopsEarly(t *testing.T) {
	lib := New()
	for i := int64(1); i <= 5; i++ {
		lib.Add(i, Track{KeyTrackID: i})
	}

	n := 0
	for range lib.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d times, want 2", n)
	}
}

func TestLibrarySelect(t *testing.T) {
	lib := New()
	for i := int64(1); i <= 4; i++ {
		lib.Add(i, Track{KeyTrackID: i})
	}

	even := lib.Select(func(id int64, _ Track) bool { return id%2 == 0 })
	if even.Len() != 2 {
		t.Fatalf("Select() Len = %d, want 2", even.Len())
	}
	if lib.Len() != 4 {
		t.Errorf("source library modified, Len = %d", lib.Len())
	}
	if ids := even.IDs(); ids[0] != 2 || ids[1] != 4 {
		t.Errorf("IDs() = %v, want [2 4]", ids)
	}
}

func TestIDsReturnsCopy(t *testing.T) {
	lib := New()
	lib.Add(1, Track{})
	ids := lib.IDs()
	ids[0] = 99
	if lib.IDs()[0] != 1 {
		t.Error("IDs() should return a copy")
	}
}

func TestTrackClone(t *testing.T) {
	orig := Track{KeyTrackID: int64(1), KeyGenre: "Rock"}
	c := orig.Clone()
	c[KeyGenre] = "Jazz"

	if g, _ := orig.String(KeyGenre); g != "Rock" {
		t.Errorf("original Genre = %q, want Rock", g)
	}
}

func TestTrackAccessorsWrongType(t *testing.T) {
	track := Track{"Year": "1959", KeyDateAdded: "2021-01-01T00:00:00Z"}

	if _, ok := track.Int("Year"); ok {
		t.Error("Int() should not accept a string value")
	}
	if _, ok := track.Date(KeyDateAdded); ok {
		t.Error("Date() should not accept a plain string value")
	}
	if _, ok := track.ID(); ok {
		t.Error("ID() should report a missing track ID")
	}
}

func TestReadFileBinary(t *testing.T) {
	added := time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)
	doc := map[string]any{
		"Major Version": 1,
		"Tracks": map[string]any{
			"8": map[string]any{
				"Track ID":   8,
				"Genre":      "Ambient",
				"Play Count": 12,
				"Date Added": added,
				"Loved":      true,
			},
		},
	}

	data, err := plist.Marshal(doc, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("failed to build binary plist: %v", err)
	}

	path := filepath.Join(t.TempDir(), "Library.plist")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	lib, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	track, ok := lib.Get(8)
	if !ok {
		t.Fatal("track 8 missing")
	}
	if n, _ := track.Int(KeyPlayCount); n != 12 {
		t.Errorf("Play Count = %d, want 12", n)
	}
	if d, _ := track.Date(KeyDateAdded); d != "2021-06-15T12:00:00Z" {
		t.Errorf("Date Added = %q, want %q", d, "2021-06-15T12:00:00Z")
	}
	if loved, _ := track.Bool("Loved"); !loved {
		t.Error("Loved = false, want true")
	}
}
