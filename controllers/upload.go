// controllers/upload.go
package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"go-marketplace/utils"
)

const maxUploadSize = 10 << 20 // 10MB

// UploadController stores product images on local disk, addressed by a
// generated public id.
type UploadController struct {
	UploadDir string
	BaseURL   string
	Logger    *zap.Logger
}

// NewUploadController creates a new UploadController rooted at dir
func NewUploadController(dir, baseURL string, logger *zap.Logger) *UploadController {
	return &UploadController{
		UploadDir: dir,
		BaseURL:   baseURL,
		Logger:    logger,
	}
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadImage accepts a multipart image and stores it under a fresh public id
func (uc *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	file, handler, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to retrieve file")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if !allowedExtensions[ext] {
		utils.RespondError(w, http.StatusBadRequest, "Unsupported image type")
		return
	}

	if err := os.MkdirAll(uc.UploadDir, os.ModePerm); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create upload directory")
		return
	}

	publicID := uuid.NewString()
	filePath := filepath.Join(uc.UploadDir, publicID+ext)

	dst, err := os.Create(filePath)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create file on server")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	utils.RespondSuccess(w, http.StatusCreated, "", map[string]interface{}{
		"public_id": publicID,
		"url":       fmt.Sprintf("%s/uploads/%s%s", uc.BaseURL, publicID, ext),
	})
}

// DeleteImage removes a stored image by public id
func (uc *UploadController) DeleteImage(w http.ResponseWriter, r *http.Request) {
	publicID := mux.Vars(r)["publicId"]
	if _, err := uuid.Parse(publicID); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid public ID")
		return
	}

	matches, err := filepath.Glob(filepath.Join(uc.UploadDir, publicID+".*"))
	if err != nil || len(matches) == 0 {
		utils.RespondError(w, http.StatusNotFound, "Image not found")
		return
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			uc.Logger.Error("failed to remove image", zap.String("path", match), zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete image")
			return
		}
	}

	utils.RespondSuccess(w, http.StatusOK, "Image deleted", nil)
}
