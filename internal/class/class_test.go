package class

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTxtPlainNames(t *testing.T) {
	path := writeTemp(t, "classes.txt", "person\ncar\n\n# comment\nbicycle\n")
	r, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 3 {
		t.Fatalf("loaded %d classes, want 3", r.Len())
	}
	if c := r.ByID(1); c == nil || c.Name != "car" {
		t.Errorf("class 1 = %+v, want car", c)
	}
}

func TestLoadTxtIDColonName(t *testing.T) {
	path := writeTemp(t, "classes.txt", "0:person\n5:car\n")
	r, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if c := r.ByID(5); c == nil || c.Name != "car" {
		t.Errorf("class 5 = %+v, want car", c)
	}
}

func TestLoadTxtNameWithColor(t *testing.T) {
	path := writeTemp(t, "classes.txt", "person,#ff0000\ncar\n")
	r, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	c := r.ByName("person")
	if c == nil || c.Color != "#ff0000" {
		t.Errorf("person = %+v, want color #ff0000", c)
	}
	rgba := c.RGBA()
	if rgba.R != 0xff || rgba.G != 0 || rgba.B != 0 {
		t.Errorf("RGBA = %+v, want red", rgba)
	}
}

func TestLoadJSONArray(t *testing.T) {
	path := writeTemp(t, "classes.json",
		`[{"id":0,"name":"person"},{"id":1,"name":"car","color":"#00ff00"}]`)
	r, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 2 {
		t.Fatalf("loaded %d classes, want 2", r.Len())
	}
	if c := r.ByID(1); c.Color != "#00ff00" {
		t.Errorf("car color = %q, want #00ff00", c.Color)
	}
}

func TestLoadJSONNameMap(t *testing.T) {
	path := writeTemp(t, "classes.json", `{"person":0,"car":3}`)
	r, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if c := r.ByID(3); c == nil || c.Name != "car" {
		t.Errorf("class 3 = %+v, want car", c)
	}
}

func TestLoadTxtDuplicateNameRejected(t *testing.T) {
	path := writeTemp(t, "classes.txt", "car\ncar\n")
	if _, err := LoadFile(path); err == nil {
		t.Error("duplicate names should fail validation")
	}
}

func TestEnsureAssignsNextID(t *testing.T) {
	r := NewRegistry()
	r.Add(&Class{ID: 4, Name: "person", Visible: true})
	c := r.Ensure("car")
	if c.ID != 5 {
		t.Errorf("ensured id = %d, want 5", c.ID)
	}
	if again := r.Ensure("car"); again != c {
		t.Error("ensure of an existing name should return the same class")
	}
}

func TestSaveTxtRoundTrip(t *testing.T) {
	r := NewRegistry()
	r.Add(&Class{ID: 1, Name: "car", Visible: true})
	r.Add(&Class{ID: 0, Name: "person", Visible: true})

	path := filepath.Join(t.TempDir(), "classes.txt")
	if err := r.SaveTxt(path); err != nil {
		t.Fatal(err)
	}
	back, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Order by id: person first.
	if c := back.ByID(0); c == nil || c.Name != "person" {
		t.Errorf("class 0 = %+v, want person", c)
	}
}

func TestCounts(t *testing.T) {
	r := NewRegistry()
	r.Add(&Class{ID: 0, Name: "person", Visible: true})
	r.Bump(0)
	r.Bump(0)
	r.Bump(7) // unknown id ignored
	if got := r.ByID(0).Count; got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	r.ResetCounts()
	if got := r.ByID(0).Count; got != 0 {
		t.Errorf("count after reset = %d, want 0", got)
	}
}
