package store

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return lib
}

func TestSaveLoadRoundTrip(t *testing.T) {
	lib := openTestLibrary(t)
	body := "void mainImage(out vec4 c, in vec2 p){c=vec4(iTime);}"
	if err := lib.Save(Record{Name: "pulse", FragmentShader: body}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, err := lib.Load("pulse")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.FragmentShader != body {
		t.Errorf("fragment shader mismatch: %q", rec.FragmentShader)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("timestamps not set on save")
	}
}

func TestSavePreservesCreatedAt(t *testing.T) {
	lib := openTestLibrary(t)
	if err := lib.Save(Record{Name: "pulse", FragmentShader: "a"}); err != nil {
		t.Fatal(err)
	}
	first, _ := lib.Load("pulse")

	if err := lib.Save(Record{Name: "pulse", FragmentShader: "b"}); err != nil {
		t.Fatal(err)
	}
	second, _ := lib.Load("pulse")

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on overwrite: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if second.FragmentShader != "b" {
		t.Errorf("body not updated: %q", second.FragmentShader)
	}
}

func TestListSortedAndDelete(t *testing.T) {
	lib := openTestLibrary(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := lib.Save(Record{Name: name, FragmentShader: name}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := lib.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 || records[0].Name != "alpha" || records[2].Name != "zeta" {
		t.Errorf("unexpected listing: %+v", records)
	}

	if err := lib.Delete("mid"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	records, _ = lib.List()
	if len(records) != 2 {
		t.Errorf("expected 2 records after delete, got %d", len(records))
	}
	if _, err := lib.Load("mid"); err == nil {
		t.Error("deleted record still loads")
	}
}

func TestInvalidNamesRejected(t *testing.T) {
	lib := openTestLibrary(t)
	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := lib.Save(Record{Name: name}); err == nil {
			t.Errorf("Save accepted invalid name %q", name)
		}
	}
}

func TestExportImport(t *testing.T) {
	src := openTestLibrary(t)
	for _, name := range []string{"one", "two"} {
		if err := src.Save(Record{Name: name, FragmentShader: name + "-body"}); err != nil {
			t.Fatal(err)
		}
	}

	exportPath := filepath.Join(t.TempDir(), "library.json")
	if err := src.Export(exportPath); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := openTestLibrary(t)
	n, err := dst.Import(exportPath)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d records, want 2", n)
	}
	rec, err := dst.Load("one")
	if err != nil {
		t.Fatalf("Load after import: %v", err)
	}
	if rec.FragmentShader != "one-body" {
		t.Errorf("imported body mismatch: %q", rec.FragmentShader)
	}
}

// An export/import round trip moves records between machines; the original
// save history must survive it rather than being restamped at import time.
func TestImportPreservesTimestamps(t *testing.T) {
	src := openTestLibrary(t)
	if err := src.Save(Record{Name: "one", FragmentShader: "one-body"}); err != nil {
		t.Fatal(err)
	}
	orig, err := src.Load("one")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	exportPath := filepath.Join(t.TempDir(), "library.json")
	if err := src.Export(exportPath); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := openTestLibrary(t)
	if _, err := dst.Import(exportPath); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got, err := dst.Load("one")
	if err != nil {
		t.Fatalf("Load after import: %v", err)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("CreatedAt rewritten on import: %v -> %v", orig.CreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(orig.UpdatedAt) {
		t.Errorf("UpdatedAt rewritten on import: %v -> %v", orig.UpdatedAt, got.UpdatedAt)
	}
}

func TestImportStampsMissingTimestamps(t *testing.T) {
	lib := openTestLibrary(t)
	doc := `{"version": 1, "shaders": [{"name": "bare", "fragmentShader": "x"}]}`
	path := filepath.Join(t.TempDir(), "library.json")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := lib.Import(path); err != nil {
		t.Fatalf("Import: %v", err)
	}
	rec, err := lib.Load("bare")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped for a record imported without them")
	}
}
