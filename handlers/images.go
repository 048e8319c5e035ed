// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/blob"
	"github.com/danielhkuo/properview/cliparse"
	"github.com/danielhkuo/properview/middleware"
	"github.com/danielhkuo/properview/models"
)

const presignExpiry = 15 * time.Minute

type ImageHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	images blob.Store
}

func NewImageHandler(db *sql.DB, cfg cliparse.Config, images blob.Store) *ImageHandler {
	return &ImageHandler{db: db, cfg: cfg, images: images}
}

func listImages(ctx context.Context, db *sql.DB, baseURL, listingID string) ([]models.ListingImage, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, listing_id, blob_key, content_type, size_bytes, created_at
		FROM listing_image
		WHERE listing_id = $1
		ORDER BY created_at, id
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.ListingImage{}
	for rows.Next() {
		var img models.ListingImage
		if err := rows.Scan(&img.ID, &img.ListingID, &img.Key, &img.ContentType, &img.SizeBytes, &img.CreatedAt); err != nil {
			return nil, err
		}
		img.URL = imageURL(baseURL, img.Key)
		images = append(images, img)
	}
	return images, rows.Err()
}

// Upload handles POST /listings/{id}/images.
// The body is the raw image; Content-Type must be image/*.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	if _, ok := ownedListing(w, r, h.db, h.cfg.SessionSalt, listingID); !ok {
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		middleware.ErrorResponse(w, http.StatusUnsupportedMediaType, "Content-Type must be an image type")
		return
	}

	// Buffer the body: S3 uploads need a seekable reader with a known length
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge,
				"Image exceeds "+strconv.FormatInt(h.cfg.MaxUploadBytes, 10)+" bytes")
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read image")
		return
	}
	if len(data) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Image body is empty")
		return
	}

	imageID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate image ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	key := blob.ImageKey(listingID, imageID)

	info, err := h.images.Put(r.Context(), key, bytes.NewReader(data), mediaType)
	if err != nil {
		slog.Error("failed to store image", "key", key, "driver", h.images.Driver(), "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	img := models.ListingImage{
		ID:          imageID,
		ListingID:   listingID,
		Key:         key,
		ContentType: mediaType,
		SizeBytes:   info.Size,
		URL:         imageURL(h.cfg.BaseURL, key),
		CreatedAt:   time.Now().UTC(),
	}
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO listing_image (id, listing_id, blob_key, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, img.ID, img.ListingID, img.Key, img.ContentType, img.SizeBytes, img.CreatedAt)
	if err != nil {
		slog.Error("failed to insert image", "error", err)
		if _, derr := h.images.Delete(r.Context(), key); derr != nil {
			slog.Warn("failed to remove orphaned image blob", "key", key, "error", derr)
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	slog.Info("image uploaded", "listing_id", listingID, "image_id", imageID, "size", img.SizeBytes)

	middleware.JSONResponse(w, http.StatusCreated, models.UploadImageResponse{Image: img})
}

// Delete handles DELETE /listings/{id}/images/{imageID}
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listingID := r.PathValue("id")
	imageID := r.PathValue("imageID")
	if _, ok := ownedListing(w, r, h.db, h.cfg.SessionSalt, listingID); !ok {
		return
	}

	var key string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT blob_key FROM listing_image WHERE id = $1 AND listing_id = $2
	`, imageID, listingID).Scan(&key)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		slog.Error("failed to query image", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if _, err := h.db.ExecContext(r.Context(), "DELETE FROM listing_image WHERE id = $1", imageID); err != nil {
		slog.Error("failed to delete image", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete image")
		return
	}
	if _, err := h.images.Delete(r.Context(), key); err != nil {
		slog.Warn("failed to delete image blob", "key", key, "error", err)
	}

	slog.Info("image deleted", "listing_id", listingID, "image_id", imageID)
	w.WriteHeader(http.StatusNoContent)
}

// Serve handles GET /images/{key...}.
// Stores that can presign (S3) redirect; the rest stream through the API.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key, err := blob.ValidateKey(r.PathValue("key"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid image key")
		return
	}

	url, err := h.images.PresignURL(r.Context(), key, presignExpiry)
	if err == nil {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	if !errors.Is(err, blob.ErrUnsupported) {
		slog.Error("failed to presign image", "key", key, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load image")
		return
	}

	info, body, err := h.images.Get(r.Context(), key)
	if errors.Is(err, blob.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		slog.Error("failed to read image", "key", key, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load image")
		return
	}
	defer body.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("image stream interrupted", "key", key, "error", err)
	}
}
