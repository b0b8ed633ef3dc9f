package submissions

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// ServeDownload streams a submission's attachment. Local storage is
// served directly; remote backends get a short-lived signed URL.
// GET /submissions/{id}/download
func (h *Handler) ServeDownload(w http.ResponseWriter, r *http.Request) {
	sub := h.loadAccessibleSubmission(w, r)
	if sub == nil {
		return
	}
	if sub.FilePath == "" {
		respond.Error(w, http.StatusNotFound, "This submission has no attachment.")
		return
	}

	filename := sub.FileName
	if filename == "" {
		filename = "download"
	}
	contentDisposition := "attachment; filename=\"" + filename + "\""

	// Attachments can be replaced on re-upload paths; keep browsers
	// from caching a stale copy.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(sub.FilePath)
		if err != nil {
			h.Log.Error("attachment path lookup failed",
				zap.Error(err), zap.String("path", sub.FilePath))
			respond.Error(w, http.StatusInternalServerError, "Failed to locate the attachment.")
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	signedURL, err := h.Storage.PresignedURL(ctx, sub.FilePath, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("signed URL generation failed",
			zap.Error(err), zap.String("path", sub.FilePath))
		respond.Error(w, http.StatusInternalServerError, "Failed to generate a download link.")
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
