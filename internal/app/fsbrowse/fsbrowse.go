/*
Package fsbrowse exposes the host filesystem for browsing and downloading:
directory listings with a hidden-file toggle, the platform root, the mounted
disks, direct file streaming, and on-the-fly zip archiving of a folder.

The server targets a trusted LAN: any authenticated user may browse any path
the server process can read. Paths are resolved to absolute form, but there is
deliberately no allowlist beyond that.
*/
package fsbrowse

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"lanshare/internal/pkg/errs"
)

// Entry describes one item of a directory listing.
type Entry struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Path     string    `json:"path"`
}

// Listing is the result of listing one directory.
type Listing struct {
	Path  string  `json:"path"`
	Items []Entry `json:"items"`
}

// Disk describes one mounted filesystem.
type Disk struct {
	Device      string `json:"device"`
	Description string `json:"description"`
	Size        int64  `json:"size"`
	MountPoint  string `json:"mountPoint"`
	IsSystem    bool   `json:"isSystem"`
}

const (
	entryTypeDirectory = "directory"
	entryTypeFile      = "file"
)

// resolvePath normalizes a client-supplied path to absolute form with no
// trailing separator (the root excepted).
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// List returns the contents of dirPath. An empty dirPath lists the current
// user's home directory. Entries whose name starts with a dot are dropped
// unless showHidden is set.
func List(dirPath string, showHidden bool) (*Listing, *errs.CustomError) {
	var target string

	if dirPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errs.NewError(errs.ErrUnknown, err)
		}
		target = home
	} else {
		resolved, err := resolvePath(dirPath)
		if err != nil {
			return nil, errs.NewError(errs.ErrInvalidParams)
		}
		target = resolved
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, errs.NewError(errs.ErrPathNotFound, target)
	}
	if !info.IsDir() {
		return nil, errs.NewError(errs.ErrNotAFolder)
	}

	dirEntries, err := os.ReadDir(target)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	items := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !showHidden && strings.HasPrefix(de.Name(), ".") {
			continue
		}
		items = append(items, buildEntry(target, de))
	}

	return &Listing{Path: target, Items: items}, nil
}

// buildEntry formats one directory entry. Stat failures (dangling symlinks,
// permission issues) degrade to an entry with zero size rather than failing
// the whole listing.
func buildEntry(dir string, de fs.DirEntry) Entry {
	fullPath := filepath.Join(dir, de.Name())

	entryType := entryTypeFile
	if de.IsDir() {
		entryType = entryTypeDirectory
	}

	entry := Entry{
		Name:     de.Name(),
		Type:     entryType,
		Modified: time.Now(),
		Path:     fullPath,
	}

	if info, err := os.Stat(fullPath); err == nil {
		entry.Modified = info.ModTime()
		if !info.IsDir() {
			entry.Size = info.Size()
		}
	}

	return entry
}

// Root returns the browsing root for this platform and the platform name.
func Root() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return `C:\`, runtime.GOOS
	default:
		return "/", runtime.GOOS
	}
}

// OpenFile opens an arbitrary host file for streaming. It returns the stream,
// the base filename, and the size in bytes. Directories are rejected.
func OpenFile(filePath string) (io.ReadCloser, string, int64, *errs.CustomError) {
	if filePath == "" {
		return nil, "", 0, errs.NewError(errs.ErrInvalidParams)
	}

	resolved, err := resolvePath(filePath)
	if err != nil {
		return nil, "", 0, errs.NewError(errs.ErrInvalidParams)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, "", 0, errs.NewError(errs.ErrFileNotFound)
	}
	if info.IsDir() {
		return nil, "", 0, errs.NewError(errs.ErrNotAFile)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, "", 0, errs.NewError(errs.ErrUnknown, err)
	}

	return f, filepath.Base(resolved), info.Size(), nil
}
