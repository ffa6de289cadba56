package fsbrowse

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"lanshare/internal/pkg/errs"
)

// ZipFolder compresses a directory tree into a temporary zip file and returns
// the temp file path plus the filename the download should carry. The caller
// owns the temp file and must remove it once the response is sent.
func ZipFolder(folderPath string) (string, string, *errs.CustomError) {
	if folderPath == "" {
		return "", "", errs.NewError(errs.ErrInvalidParams)
	}

	resolved, err := resolvePath(folderPath)
	if err != nil {
		return "", "", errs.NewError(errs.ErrInvalidParams)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", "", errs.NewError(errs.ErrPathNotFound, resolved)
	}
	if !info.IsDir() {
		return "", "", errs.NewError(errs.ErrNotAFolder)
	}

	folderName := filepath.Base(resolved)

	tmp, err := os.CreateTemp("", folderName+"-*.zip")
	if err != nil {
		return "", "", errs.NewError(errs.ErrUnknown, err)
	}

	if err := writeZip(tmp, resolved, folderName); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", errs.NewError(errs.ErrUnknown, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", errs.NewError(errs.ErrUnknown, err)
	}

	return tmp.Name(), folderName + ".zip", nil
}

// writeZip archives the directory at root under the top-level name prefix.
// The whole tree lands in the archive as prefix/relative-path entries.
func writeZip(w io.Writer, root string, prefix string) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, de fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		name := prefix
		if rel != "." {
			name = prefix + "/" + filepath.ToSlash(rel)
		}

		info, err := de.Info()
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name

		if de.IsDir() {
			header.Name += "/"
			_, err := zw.CreateHeader(header)
			return err
		}

		// Symlinks and other non-regular entries are skipped.
		if !info.Mode().IsRegular() {
			return nil
		}

		header.Method = zip.Deflate
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(entry, f)
		return err
	})

	if err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
