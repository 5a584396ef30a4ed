package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkframe/inkframe/internal/settings"
	"github.com/inkframe/inkframe/internal/store"
	"github.com/inkframe/inkframe/pkg/framelib"
)

type apiResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiResponse{Success: false, Error: msg})
}

// writeSelection maps a cycling operation outcome to a response. An empty
// library is a neutral "nothing to display", not a server error.
func (s *WebServer) writeSelection(w http.ResponseWriter, id string, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]string{"current": id}})
	case errors.Is(err, framelib.ErrEmptyLibrary):
		writeJSON(w, http.StatusOK, apiResponse{Success: false, Error: "no photos available"})
	case errors.Is(err, framelib.ErrNotFound), errors.Is(err, store.ErrPhotoNotFound):
		writeError(w, http.StatusNotFound, "photo not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *WebServer) handleNext(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.Next(r.Context())
	s.writeSelection(w, id, err)
}

func (s *WebServer) handlePrev(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.Prev(r.Context())
	s.writeSelection(w, id, err)
}

func (s *WebServer) handleShow(w http.ResponseWriter, r *http.Request) {
	photoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid photo id")
		return
	}
	id, err := s.svc.Show(r.Context(), photoID)
	s.writeSelection(w, id, err)
}

func (s *WebServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ShowInfo(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

func (s *WebServer) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	photos, err := s.svc.Store.List(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	count, err := s.svc.Store.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]interface{}{
		"photos": photos,
		"count":  count,
	}})
}

func (s *WebServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.svc.Settings.Load().Upload.MaxFileSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing photo upload")
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	name := uuid.New().String() + ext
	dest := filepath.Join(s.cfg.PhotoDir, name)

	if err := os.MkdirAll(s.cfg.PhotoDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create photo directory")
		return
	}
	out, err := os.Create(dest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	size, err := io.Copy(out, file)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	id, err := s.svc.Store.Add(store.Photo{
		Filename:      name,
		OriginalPath:  dest,
		DisplayPath:   dest,
		ThumbnailPath: dest,
		FileSize:      size,
		MimeType:      header.Header.Get("Content-Type"),
		UploadedAt:    time.Now().Format(time.RFC3339),
	})
	if err != nil {
		os.Remove(dest)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("photo %s uploaded (%d bytes)", name, size)
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Data: map[string]interface{}{"id": id, "filename": name}})
}

// removeFiles best-effort deletes the files behind removed photo records.
func (s *WebServer) removeFiles(photos []store.Photo) {
	for _, p := range photos {
		for _, path := range []string{p.OriginalPath, p.DisplayPath, p.ThumbnailPath} {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.log.Warning("failed to remove %s: %v", path, err)
			}
		}
	}
}

func (s *WebServer) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid photo id")
		return
	}
	p, err := s.svc.Store.Delete(photoID)
	if errors.Is(err, store.ErrPhotoNotFound) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.removeFiles([]store.Photo{p})
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

func (s *WebServer) handleDeleteBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	removed, err := s.svc.Store.DeleteBulk(req.IDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.removeFiles(removed)
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]int{"deleted": len(removed)}})
}

func (s *WebServer) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	photoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid photo id")
		return
	}
	fav, err := s.svc.Store.ToggleFavorite(photoID)
	if errors.Is(err, store.ErrPhotoNotFound) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]bool{"is_favorite": fav}})
}

func (s *WebServer) handleSlideshowStart(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.StartSlideshow(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: s.svc.Slideshow.Status()})
}

func (s *WebServer) handleSlideshowStop(w http.ResponseWriter, r *http.Request) {
	s.svc.StopSlideshow()
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

func (s *WebServer) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Settings.Load()
	// Never leak the password hash through the read API.
	st.Web.PasswordHash = ""
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: st})
}

func (s *WebServer) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var bad error
	st, err := s.svc.Settings.Update(func(cur *settings.Settings) {
		// Partial updates merge over the current values.
		if uerr := json.Unmarshal(body, cur); uerr != nil {
			bad = uerr
		}
	})
	if bad != nil {
		writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A changed interval retimes a running slideshow immediately.
	if s.svc.Slideshow.Status().Running {
		minutes := settings.NormalizeInterval(st.Slideshow.IntervalMinutes)
		s.svc.Slideshow.Start(time.Duration(minutes) * time.Minute)
	}

	st.Web.PasswordHash = ""
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: st})
}

func (s *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.SystemStatus(r.Context()))
}

func (s *WebServer) handleWifiScan(w http.ResponseWriter, r *http.Request) {
	ssids, err := s.svc.Wifi.Scan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string][]string{"networks": ssids}})
}

func (s *WebServer) handleWifiConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SSID     string `json:"ssid"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SSID == "" {
		writeError(w, http.StatusBadRequest, "ssid is required")
		return
	}
	if err := s.svc.Wifi.Connect(r.Context(), req.SSID, req.Password); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if _, err := s.svc.Settings.Update(func(cur *settings.Settings) {
		cur.Wifi.SSID = req.SSID
		cur.Wifi.Configured = true
	}); err != nil {
		s.log.Warning("failed to record wifi settings: %v", err)
	}
	s.svc.LeaveSetupMode(r.Context())
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// handlePortalProbe answers OS captive-portal checks: while the setup
// hotspot is up, probes are redirected to the wifi form so phones pop the
// portal automatically.
func (s *WebServer) handlePortalProbe(w http.ResponseWriter, r *http.Request) {
	if s.svc.SetupMode.Get() || s.svc.Wifi.APMode(r.Context()) {
		http.Redirect(w, r, "/setup/wifi", http.StatusFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
