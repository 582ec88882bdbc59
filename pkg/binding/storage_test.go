package binding

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKVStoreRoundTrip(t *testing.T) {
	store, err := OpenKVStore(filepath.Join(t.TempDir(), "docs", "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	doc := store.Document("formulas")
	if doc.Kind() != KindKV {
		t.Errorf("kind = %v, want %v", doc.Kind(), KindKV)
	}

	if _, err := doc.Read(); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("read of missing key: %v, want ErrNoDocument", err)
	}

	if err := doc.Write([]byte(`[{"latex":"x"}]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := doc.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `[{"latex":"x"}]` {
		t.Errorf("read back %q", got)
	}

	// A second write replaces the document.
	if err := doc.Write([]byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = doc.Read()
	if string(got) != `[]` {
		t.Errorf("after overwrite: %q", got)
	}
}

func TestKVStoreKeysAreIndependent(t *testing.T) {
	store, err := OpenKVStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.Document("formulas").Write([]byte(`formulas`)); err != nil {
		t.Fatalf("write formulas: %v", err)
	}
	if err := store.Document("templates").Write([]byte(`templates`)); err != nil {
		t.Fatalf("write templates: %v", err)
	}

	got, err := store.Document("formulas").Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `formulas` {
		t.Errorf("keys bled into each other: %q", got)
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formulas.json")
	fs, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if fs.Kind() != KindFile {
		t.Errorf("kind = %v, want %v", fs.Kind(), KindFile)
	}

	if _, err := fs.Read(); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("read of missing file: %v, want ErrNoDocument", err)
	}

	if err := fs.Write([]byte(`[1,2,3]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := fs.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `[1,2,3]` {
		t.Errorf("read back %q", got)
	}
}

func TestFileStorageWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(filepath.Join(dir, "doc.json"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := fs.Write([]byte(`{}`)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want just the document", len(entries))
	}
}

func TestHostStorage(t *testing.T) {
	files := map[string]string{}
	cmds := HostCommands{
		ReadFile: func(path string) (string, error) {
			content, ok := files[path]
			if !ok {
				return "", errors.New("no such file")
			}
			return content, nil
		},
		WriteFile: func(path, content string) error {
			files[path] = content
			return nil
		},
	}

	if _, err := NewHostStorage(HostCommands{}, "/doc"); err == nil {
		t.Error("host storage accepted missing commands")
	}
	if _, err := NewHostStorage(cmds, ""); err == nil {
		t.Error("host storage accepted an empty path")
	}

	hs, err := NewHostStorage(cmds, "/doc")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := hs.Write([]byte(`x`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := hs.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `x` {
		t.Errorf("read back %q", got)
	}
	if hs.Path() != "/doc" || hs.Kind() != KindHost {
		t.Errorf("identity: path=%q kind=%v", hs.Path(), hs.Kind())
	}
}
