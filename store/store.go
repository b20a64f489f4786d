// Package store persists the user's shader library as JSON files on disk.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Record is one saved shader. FragmentShader is the raw body handed to the
// validation and conversion layer when the shader is loaded for preview.
type Record struct {
	Name           string    `json:"name"`
	FragmentShader string    `json:"fragmentShader"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// libraryDocument is the export/import wire format for a whole library.
type libraryDocument struct {
	Version int      `json:"version"`
	Shaders []Record `json:"shaders"`
}

const exportVersion = 1

// Library is a directory of shader records, one JSON file per shader.
type Library struct {
	dir string
}

// DefaultDir returns the OS-specific data directory for shaderbench.
func DefaultDir(subdir string) (string, error) {
	var baseDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		baseDir = os.Getenv("LOCALAPPDATA")
		if baseDir == "" {
			err = fmt.Errorf("LOCALAPPDATA environment variable not set")
		}
	case "darwin":
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			err = fmt.Errorf("HOME environment variable not set")
		} else {
			baseDir = filepath.Join(homeDir, "Library", "Application Support")
		}
	default: // linux, bsd, etc.
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir := os.Getenv("HOME")
			if homeDir == "" {
				err = fmt.Errorf("HOME environment variable not set")
			} else {
				baseDir = filepath.Join(homeDir, ".local", "share")
			}
		}
	}
	if err != nil {
		return "", err
	}

	dir := filepath.Join(baseDir, "shaderbench", subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory at %s: %w", dir, err)
	}
	return dir, nil
}

// Open returns the library rooted at dir, or the default library location
// when dir is empty.
func Open(dir string) (*Library, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir("shaders")
		if err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory at %s: %w", dir, err)
	}
	return &Library{dir: dir}, nil
}

// Dir reports the library's root directory.
func (l *Library) Dir() string {
	return l.dir
}

func (l *Library) pathFor(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid shader name %q", name)
	}
	return filepath.Join(l.dir, name+".json"), nil
}

// Save writes a record, preserving CreatedAt for an existing shader.
func (l *Library) Save(rec Record) error {
	path, err := l.pathFor(rec.Name)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rec.UpdatedAt = now
	if existing, err := l.Load(rec.Name); err == nil {
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	return l.writeRecord(path, rec)
}

func (l *Library) writeRecord(path string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal shader %q: %w", rec.Name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write shader %q: %w", rec.Name, err)
	}
	return nil
}

// Load reads a single record by name.
func (l *Library) Load(name string) (*Record, error) {
	path, err := l.pathFor(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %q: %w", name, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode shader %q: %w", name, err)
	}
	return &rec, nil
}

// List returns all records sorted by name.
func (l *Library) List() ([]Record, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		rec, err := l.Load(name)
		if err != nil {
			// A corrupt record should not hide the rest of the library.
			continue
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// Delete removes a record by name.
func (l *Library) Delete(name string) error {
	path, err := l.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete shader %q: %w", name, err)
	}
	return nil
}

// Export writes the whole library to a single JSON document.
func (l *Library) Export(path string) error {
	records, err := l.List()
	if err != nil {
		return err
	}
	doc := libraryDocument{Version: exportVersion, Shaders: records}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal library export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write library export to %s: %w", path, err)
	}
	return nil
}

// Import merges a previously exported document into the library, overwriting
// records with matching names. The document's timestamps are kept as-is so a
// round trip through Export does not rewrite a shader's history; only records
// missing timestamps get stamped with the import time. It returns the number
// of imported shaders.
func (l *Library) Import(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read library export %s: %w", path, err)
	}
	var doc libraryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("failed to decode library export %s: %w", path, err)
	}
	if doc.Version != exportVersion {
		return 0, fmt.Errorf("unsupported library export version %d", doc.Version)
	}

	now := time.Now().UTC()
	imported := 0
	for _, rec := range doc.Shaders {
		recPath, err := l.pathFor(rec.Name)
		if err != nil {
			return imported, err
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = now
		}
		if err := l.writeRecord(recPath, rec); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
