package routes

import (
	"errors"
	"net/http"

	"clipforge/config"
	"clipforge/logger"
	"clipforge/signing"
)

// DownloadHandler serves a rendered export from the local backend's serve
// directory. The token is the whole authorization: it carries the object key
// and expiry, so no session or header is needed.
func (h *Handlers) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Download request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.local == nil {
		// Cloud backends sign their own URLs; this route only exists for
		// local storage.
		http.Error(w, "Downloads are not served from this host", http.StatusNotFound)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token parameter", http.StatusBadRequest)
		return
	}

	claims, err := signing.VerifyDownloadToken(token, config.GetSigningSecret(), 0)
	if err != nil {
		if errors.Is(err, signing.ErrTokenExpired) {
			http.Error(w, "Download link expired", http.StatusForbidden)
			return
		}
		logger.Warnf("Rejected download token: %v", err)
		http.Error(w, "Invalid download token", http.StatusForbidden)
		return
	}

	path, err := h.local.ObjectPath(claims.ObjectKey)
	if err != nil {
		logger.Warnf("Rejected object key %q: %v", claims.ObjectKey, err)
		http.Error(w, "Invalid object key", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="export.mp4"`)
	http.ServeFile(w, r, path)
}
