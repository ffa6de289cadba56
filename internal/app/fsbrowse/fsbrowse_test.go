package fsbrowse

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"lanshare/internal/pkg/errs"
)

// populateDir builds a small tree for listing and zipping tests:
//
//	root/
//	  notes.txt
//	  .hidden
//	  sub/
//	    inner.txt
func populateDir(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".hidden"), []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "inner.txt"), []byte("inner"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func findEntry(items []Entry, name string) (Entry, bool) {
	for _, item := range items {
		if item.Name == name {
			return item, true
		}
	}
	return Entry{}, false
}

func TestListHiddenFilter(t *testing.T) {
	t.Parallel()

	root := populateDir(t)

	listing, customErr := List(root, false)
	if customErr != nil {
		t.Fatalf("List() error = %v", customErr)
	}
	if listing.Path != root {
		t.Errorf("Path = %q, want %q", listing.Path, root)
	}
	if _, ok := findEntry(listing.Items, ".hidden"); ok {
		t.Error("hidden entry listed without showHidden")
	}

	file, ok := findEntry(listing.Items, "notes.txt")
	if !ok {
		t.Fatal("notes.txt missing from listing")
	}
	if file.Type != entryTypeFile {
		t.Errorf("notes.txt type = %q, want %q", file.Type, entryTypeFile)
	}
	if file.Size != int64(len("hello notes")) {
		t.Errorf("notes.txt size = %d, want %d", file.Size, len("hello notes"))
	}
	if file.Path != filepath.Join(root, "notes.txt") {
		t.Errorf("notes.txt path = %q", file.Path)
	}

	dir, ok := findEntry(listing.Items, "sub")
	if !ok {
		t.Fatal("sub missing from listing")
	}
	if dir.Type != entryTypeDirectory {
		t.Errorf("sub type = %q, want %q", dir.Type, entryTypeDirectory)
	}
	if dir.Size != 0 {
		t.Errorf("directory size = %d, want 0", dir.Size)
	}

	withHidden, customErr := List(root, true)
	if customErr != nil {
		t.Fatalf("List(showHidden) error = %v", customErr)
	}
	if _, ok := findEntry(withHidden.Items, ".hidden"); !ok {
		t.Error(".hidden missing with showHidden set")
	}
}

func TestListErrors(t *testing.T) {
	t.Parallel()

	root := populateDir(t)

	if _, customErr := List(filepath.Join(root, "does-not-exist"), false); customErr == nil || customErr.Code != errs.ErrPathNotFound {
		t.Errorf("List(missing) error = %v, want path not found", customErr)
	}
	if _, customErr := List(filepath.Join(root, "notes.txt"), false); customErr == nil || customErr.Code != errs.ErrNotAFolder {
		t.Errorf("List(file) error = %v, want not a folder", customErr)
	}
}

func TestListDefaultsToHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	listing, customErr := List("", false)
	if customErr != nil {
		t.Fatalf("List(\"\") error = %v", customErr)
	}
	if listing.Path != home {
		t.Errorf("Path = %q, want home %q", listing.Path, home)
	}
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	root := populateDir(t)

	rc, name, size, customErr := OpenFile(filepath.Join(root, "notes.txt"))
	if customErr != nil {
		t.Fatalf("OpenFile() error = %v", customErr)
	}
	defer rc.Close()

	if name != "notes.txt" {
		t.Errorf("name = %q, want notes.txt", name)
	}
	if size != int64(len("hello notes")) {
		t.Errorf("size = %d, want %d", size, len("hello notes"))
	}

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "hello notes" {
		t.Errorf("content = %q, want %q", got, "hello notes")
	}
}

func TestOpenFileErrors(t *testing.T) {
	t.Parallel()

	root := populateDir(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "empty path", path: "", wantCode: errs.ErrInvalidParams},
		{name: "missing file", path: filepath.Join(root, "nope.txt"), wantCode: errs.ErrFileNotFound},
		{name: "directory", path: root, wantCode: errs.ErrNotAFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, _, customErr := OpenFile(tt.path)
			if customErr == nil || customErr.Code != tt.wantCode {
				t.Errorf("OpenFile(%q) error = %v, want code %d", tt.path, customErr, tt.wantCode)
			}
		})
	}
}

func TestRoot(t *testing.T) {
	t.Parallel()

	root, platform := Root()
	if root == "" {
		t.Error("Root() returned an empty root")
	}
	if platform == "" {
		t.Error("Root() returned an empty platform")
	}
}

func TestZipFolder(t *testing.T) {
	t.Parallel()

	root := populateDir(t)
	folderName := filepath.Base(root)

	tmpPath, zipName, customErr := ZipFolder(root)
	if customErr != nil {
		t.Fatalf("ZipFolder() error = %v", customErr)
	}
	defer os.Remove(tmpPath)

	if zipName != folderName+".zip" {
		t.Errorf("zip name = %q, want %q", zipName, folderName+".zip")
	}

	zr, err := zip.OpenReader(tmpPath)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer zr.Close()

	contents := map[string]string{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			contents[f.Name] = ""
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %q: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %q: %v", f.Name, err)
		}
		contents[f.Name] = string(data)
	}

	if got := contents[folderName+"/notes.txt"]; got != "hello notes" {
		t.Errorf("notes.txt content = %q, want %q", got, "hello notes")
	}
	if got := contents[folderName+"/sub/inner.txt"]; got != "inner" {
		t.Errorf("sub/inner.txt content = %q, want %q", got, "inner")
	}
	if _, ok := contents[folderName+"/sub/"]; !ok {
		t.Error("directory entry for sub/ missing from archive")
	}
}

func TestZipFolderErrors(t *testing.T) {
	t.Parallel()

	root := populateDir(t)

	if _, _, customErr := ZipFolder(""); customErr == nil || customErr.Code != errs.ErrInvalidParams {
		t.Errorf("ZipFolder(\"\") error = %v, want invalid params", customErr)
	}
	if _, _, customErr := ZipFolder(filepath.Join(root, "missing")); customErr == nil || customErr.Code != errs.ErrPathNotFound {
		t.Errorf("ZipFolder(missing) error = %v, want path not found", customErr)
	}
	if _, _, customErr := ZipFolder(filepath.Join(root, "notes.txt")); customErr == nil || customErr.Code != errs.ErrNotAFolder {
		t.Errorf("ZipFolder(file) error = %v, want not a folder", customErr)
	}
}
