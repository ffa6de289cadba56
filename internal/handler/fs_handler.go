/*
This file contains the handlers for host filesystem browsing: directory
listings, the platform root, mounted disks, direct file downloads, and zipped
folder downloads.
*/
package handler

import (
	"io"
	"net/http"
	"os"
	"strconv"

	"lanshare/internal/app/fsbrowse"
	"lanshare/internal/pkg/logx"
	"lanshare/internal/pkg/resp"
)

// HandleFsList lists a host directory. Query parameters: dirPath (defaults to
// the home directory) and showHidden ("true" keeps dotfiles).
func HandleFsList(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dirPath := r.URL.Query().Get("dirPath")
		showHidden := r.URL.Query().Get("showHidden") == "true"

		listing, customErr := fsbrowse.List(dirPath, showHidden)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondFields(w, r, resp.Fields{
			"path":  listing.Path,
			"items": listing.Items,
		})
	}
}

// HandleFsRoot reports the platform browsing root.
func HandleFsRoot(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		root, platform := fsbrowse.Root()

		resp.RespondFields(w, r, resp.Fields{
			"homeDir":  root,
			"platform": platform,
		})
	}
}

// HandleFsDisks lists the mounted disks.
func HandleFsDisks(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		disks, customErr := fsbrowse.Disks()
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondFields(w, r, resp.Fields{
			"drives": disks,
		})
	}
}

// HandleFsDownload streams one host file, identified by the filePath query
// parameter, as an attachment.
func HandleFsDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, name, size, customErr := fsbrowse.OpenFile(r.URL.Query().Get("filePath"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		defer content.Close()

		w.Header().Set("Content-Disposition", contentDisposition(name))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

		if _, err := io.Copy(w, content); err != nil {
			logx.Warn("Filesystem download stream ended early", "file", name, "error", err.Error())
		}
	}
}

// HandleFsDownloadFolder zips the folder named by the folderPath query
// parameter into a temp file, streams it, and removes the temp file afterwards.
func HandleFsDownloadFolder(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zipPath, zipName, customErr := fsbrowse.ZipFolder(r.URL.Query().Get("folderPath"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		defer func() {
			if err := os.Remove(zipPath); err != nil {
				logx.Warn("Failed to remove temporary zip file", "path", zipPath, "error", err.Error())
			}
		}()

		f, err := os.Open(zipPath)
		if err != nil {
			resp.RespondError(w, r, nil)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			resp.RespondError(w, r, nil)
			return
		}

		w.Header().Set("Content-Disposition", contentDisposition(zipName))
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))

		if _, err := io.Copy(w, f); err != nil {
			logx.Warn("Folder download stream ended early", "zip", zipName, "error", err.Error())
		}
	}
}
