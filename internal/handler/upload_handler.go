/*
This file contains the handlers for the upload gateway: image and file uploads,
the upload listing, public serving of stored files, and authenticated downloads
with original-name preservation.
*/
package handler

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lanshare/internal/app/storage"
	"lanshare/internal/app/store"
	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/logx"
	"lanshare/internal/pkg/req"
	"lanshare/internal/pkg/resp"
)

// fileListEntry is one row of the GET /api/files response.
type fileListEntry struct {
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"originalName"`
	Size          int64     `json:"size"`
	SizeFormatted string    `json:"sizeFormatted"`
	UploadTime    time.Time `json:"uploadTime"`
	Type          string    `json:"type"`
}

// formatFileSize renders a byte count in human-readable units.
func formatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}

	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")

	return s + " " + sizes[i]
}

// contentDisposition builds an attachment header that survives non-ASCII
// filenames: a plain ASCII fallback plus the RFC 5987 encoded form.
func contentDisposition(filename string) string {
	asciiSafe := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\' || r == '\r' || r == '\n':
			return -1
		case r < 0x20 || r > 0x7e:
			return '_'
		}
		return r
	}, filename)

	if asciiSafe == "" {
		asciiSafe = "download"
	}

	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiSafe, url.PathEscape(filename))
}

// saveUpload runs the shared upload path: read the multipart file, fix the
// original name encoding, store the bytes, and record the metadata. The
// metadata write is best-effort; a stored file without a record is still
// downloadable, its original name just degrades to stored-name parsing.
func saveUpload(deps *AppDeps, w http.ResponseWriter, r *http.Request, field string, imagesOnly bool) (*store.Upload, *errs.CustomError) {
	if customErr := req.SetupMultipart(w, r); customErr != nil {
		return nil, customErr
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, errs.NewError(errs.ErrNoFileUploaded)
	}
	defer file.Close()

	originalName := storage.DecodeLegacyFilename(header.Filename)
	contentType := header.Header.Get("Content-Type")

	if imagesOnly {
		if !storage.IsImageMIME(contentType) {
			return nil, errs.NewError(errs.ErrOnlyImagesAllowed)
		}
	} else {
		if customErr := storage.ValidateExtension(originalName); customErr != nil {
			return nil, customErr
		}
	}

	storedName, err := storage.StoredName(originalName)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	if err := deps.Uploads.Save(r.Context(), storedName, contentType, header.Size, file); err != nil {
		logx.Error(err, "Upload storage failed", "stored_name", storedName)
		return nil, errs.NewError(errs.ErrFileStorageFailed)
	}

	rec := &store.Upload{
		StoredName:   storedName,
		OriginalName: storage.SanitizeFilename(originalName),
		Size:         header.Size,
		MimeType:     contentType,
		UploaderID:   CurrentUser(r).ID,
		UploadedAt:   time.Now(),
	}

	if err := deps.Store.CreateUpload(r.Context(), rec); err != nil {
		logx.Error(err, "Failed to record upload metadata", "stored_name", storedName)
	}

	return rec, nil
}

// HandleUploadImage accepts an image in the "image" multipart field and
// returns the URL the chat client embeds in image messages.
func HandleUploadImage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, customErr := saveUpload(deps, w, r, "image", true)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondFields(w, r, resp.Fields{
			"imageUrl": "/uploads/" + rec.StoredName,
			"filename": rec.StoredName,
		})
	}
}

// HandleUploadFile accepts any non-executable file in the "file" multipart
// field.
func HandleUploadFile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, customErr := saveUpload(deps, w, r, "file", false)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondFields(w, r, resp.Fields{
			"fileUrl":      "/uploads/" + rec.StoredName,
			"filename":     rec.StoredName,
			"originalName": rec.OriginalName,
			"size":         rec.Size,
			"mimetype":     rec.MimeType,
		})
	}
}

// HandleListFiles returns every recorded upload, newest first.
func HandleListFiles(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := deps.Store.ListUploads(r.Context())
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		files := make([]fileListEntry, 0, len(records))
		for _, rec := range records {
			files = append(files, fileListEntry{
				Filename:      rec.StoredName,
				OriginalName:  rec.OriginalName,
				Size:          rec.Size,
				SizeFormatted: formatFileSize(rec.Size),
				UploadTime:    rec.UploadedAt,
				Type:          strings.ToLower(filepath.Ext(rec.StoredName)),
			})
		}

		resp.RespondFields(w, r, resp.Fields{
			"files": files,
		})
	}
}

// HandleDeleteFile removes a shared upload: the stored bytes first, then the
// metadata record. Any authenticated user may delete any upload, matching the
// trusted-LAN model of the rest of the API.
func HandleDeleteFile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storedName := chi.URLParam(r, "filename")

		if err := deps.Uploads.Delete(r.Context(), storedName); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		// The bytes are gone; a stale metadata row only costs a dead listing
		// entry, so this part stays best-effort.
		if err := deps.Store.DeleteUpload(r.Context(), storedName); err != nil && !errors.Is(err, store.ErrNotFound) {
			logx.Error(err, "Failed to remove upload metadata", "stored_name", storedName)
		}

		logx.Info("Upload deleted", "stored_name", storedName, "user_id", CurrentUser(r).ID)

		resp.RespondSuccess(w, r, "File deleted", nil)
	}
}

// parseOriginalName recovers an original filename from a stored name by
// stripping the random suffix after the last hyphen. Lossy for names whose
// base already contained hyphens; only used for files that predate metadata
// records.
func parseOriginalName(storedName string) string {
	ext := filepath.Ext(storedName)
	base := strings.TrimSuffix(storedName, ext)

	if idx := strings.LastIndex(base, "-"); idx > 0 {
		return base[:idx] + ext
	}

	return storedName
}

// HandleDownloadUpload streams an uploaded file back as an attachment carrying
// its original name.
func HandleDownloadUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storedName := chi.URLParam(r, "filename")

		content, size, err := deps.Uploads.Open(r.Context(), storedName)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}
		defer content.Close()

		downloadName := parseOriginalName(storedName)
		if rec, err := deps.Store.GetUpload(r.Context(), storedName); err == nil {
			downloadName = rec.OriginalName
		}

		w.Header().Set("Content-Disposition", contentDisposition(downloadName))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

		if _, err := io.Copy(w, content); err != nil {
			// Headers are already out; nothing to do but log and end early.
			logx.Warn("Upload download stream ended early", "stored_name", storedName, "error", err.Error())
		}
	}
}

// HandleServeUpload serves stored files inline under /uploads/, the URL shape
// image and file messages carry.
func HandleServeUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storedName := chi.URLParam(r, "filename")

		content, size, err := deps.Uploads.Open(r.Context(), storedName)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}
		defer content.Close()

		contentType := ""
		if rec, err := deps.Store.GetUpload(r.Context(), storedName); err == nil {
			contentType = rec.MimeType
		}
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(storedName))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

		if _, err := io.Copy(w, content); err != nil {
			logx.Warn("Upload serve stream ended early", "stored_name", storedName, "error", err.Error())
		}
	}
}
