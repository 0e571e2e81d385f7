package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func multipartImage(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	dir := t.TempDir()
	uc := NewUploadController(dir, "http://localhost:8000", zap.NewNop())

	body, contentType := multipartImage(t, "image", "photo.png")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	uc.UploadImage(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success  bool   `json:"success"`
		PublicID string `json:"public_id"`
		URL      string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.PublicID)
	assert.Contains(t, resp.URL, resp.PublicID)

	stored, err := os.ReadFile(filepath.Join(dir, resp.PublicID+".png"))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(stored))
}

func TestUploadImageRejectsUnsupportedType(t *testing.T) {
	uc := NewUploadController(t.TempDir(), "http://localhost:8000", zap.NewNop())

	body, contentType := multipartImage(t, "image", "script.sh")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	uc.UploadImage(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadImageMissingFile(t *testing.T) {
	uc := NewUploadController(t.TempDir(), "http://localhost:8000", zap.NewNop())

	body, contentType := multipartImage(t, "wrong_field", "photo.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	uc.UploadImage(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteImage(t *testing.T) {
	dir := t.TempDir()
	uc := NewUploadController(dir, "http://localhost:8000", zap.NewNop())

	// Store an image first.
	body, contentType := multipartImage(t, "image", "photo.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	uc.UploadImage(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		PublicID string `json:"public_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	del := httptest.NewRequest(http.MethodDelete, "/api/upload/"+resp.PublicID, nil)
	del = mux.SetURLVars(del, map[string]string{"publicId": resp.PublicID})
	delRec := httptest.NewRecorder()
	uc.DeleteImage(delRec, del)
	assert.Equal(t, http.StatusOK, delRec.Code)

	matches, err := filepath.Glob(filepath.Join(dir, resp.PublicID+".*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDeleteImageInvalidID(t *testing.T) {
	uc := NewUploadController(t.TempDir(), "http://localhost:8000", zap.NewNop())

	req := httptest.NewRequest(http.MethodDelete, "/api/upload/not-a-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"publicId": "not-a-uuid"})
	rec := httptest.NewRecorder()
	uc.DeleteImage(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
