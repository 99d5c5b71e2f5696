// Package profile serves inspector profiles: certification level, the
// standard new calculations default to, and an avatar.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ScanMaster/internal/auth"
	"ScanMaster/internal/repo"
	"ScanMaster/internal/standards"
)

type ProfileHandler struct {
	Repo repo.Repository
	Log  *zap.Logger

	// UploadDir is where avatars are written; files are served from
	// /uploads/. Defaults to ./static/uploads.
	UploadDir string
}

type UpdateProfileRequest struct {
	Login              string `json:"login"`
	Description        string `json:"description"`
	CertificationLevel string `json:"certification_level"`
	DefaultStandard    string `json:"default_standard"`
}

const MaxUploadSize = 10 << 20 // 10MB

// certification levels per ISO 9712 / EN 4179
var levels = map[string]bool{"": true, "UT1": true, "UT2": true, "UT3": true}

var avatarExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

func (h *ProfileHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func (h *ProfileHandler) uploadDir() string {
	if h.UploadDir == "" {
		return "./static/uploads"
	}
	return h.UploadDir
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !avatarExt[ext] {
		http.Error(w, "Unsupported image type", http.StatusBadRequest)
		return
	}
	if err := os.MkdirAll(h.uploadDir(), 0755); err != nil {
		http.Error(w, "Storage error", http.StatusInternalServerError)
		return
	}

	fileName := uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(h.uploadDir(), fileName), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		h.logger().Error("open avatar file", zap.Error(err))
		http.Error(w, "Storage error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	if _, err := io.Copy(f, file); err != nil {
		http.Error(w, "Storage error", http.StatusInternalServerError)
		return
	}

	imagePath := "/uploads/" + fileName
	if err := h.Repo.UpdateAvatar(r.Context(), userID, imagePath); err != nil {
		h.logger().Error("update avatar", zap.Int("id", userID), zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"avatar_url": imagePath})
}

// GetProfile returns /profile/{id} when an id is routed, otherwise the
// caller's own profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	targetID := auth.UserID(r.Context())
	if idStr, ok := mux.Vars(r)["id"]; ok && idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			http.Error(w, "Invalid id", http.StatusBadRequest)
			return
		}
		targetID = id
	}
	if targetID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	prof, err := h.Repo.GetProfileByID(r.Context(), targetID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			h.logger().Error("get profile", zap.Int("id", targetID), zap.Error(err))
		}
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prof)
}

func (req *UpdateProfileRequest) normalize() error {
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" {
		return errors.New("login required")
	}
	req.CertificationLevel = strings.ToUpper(strings.TrimSpace(req.CertificationLevel))
	if !levels[req.CertificationLevel] {
		return fmt.Errorf("unknown certification level %q", req.CertificationLevel)
	}
	if req.DefaultStandard != "" {
		std, err := standards.Parse(req.DefaultStandard)
		if err != nil {
			return err
		}
		req.DefaultStandard = string(std)
	}
	return nil
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := req.normalize(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prof, err := h.Repo.UpdateProfile(r.Context(), userID, repo.ProfileUpdate{
		Login:              req.Login,
		Description:        req.Description,
		CertificationLevel: req.CertificationLevel,
		DefaultStandard:    req.DefaultStandard,
	})
	if err != nil {
		h.logger().Warn("update profile", zap.Int("id", userID), zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prof)
}
