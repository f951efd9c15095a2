package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"insight-server/pkg/apierror"
)

const thumbnailSize = 128

var allowedImageFormats = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// UploadService stores profile photos on disk under a random name, keeps a
// scaled JPEG thumbnail next to them, and tracks the stored path on the user
// row. Replacing a photo removes the previous files.
type UploadService struct {
	users         UserStore
	uploadRoot    string
	thumbnailRoot string
}

func NewUploadService(users UserStore, uploadRoot string, thumbnailRoot string) (*UploadService, error) {
	if err := os.MkdirAll(uploadRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	if err := os.MkdirAll(thumbnailRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail root: %w", err)
	}

	return &UploadService{users: users, uploadRoot: uploadRoot, thumbnailRoot: thumbnailRoot}, nil
}

func (s *UploadService) SaveProfilePhoto(ctx context.Context, userID int64, file io.Reader) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", apierror.New("BAD_REQUEST", "file is not a valid image", "", http.StatusBadRequest)
	}

	ext, ok := allowedImageFormats[format]
	if !ok {
		return "", apierror.New("BAD_REQUEST", "unsupported image format", format, http.StatusBadRequest)
	}

	name := uuid.NewString() + "." + ext
	path := filepath.Join(s.uploadRoot, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write profile photo: %w", err)
	}

	if err := s.writeThumbnail(src, name); err != nil {
		// The full-size photo is already stored; a missing thumbnail is
		// not worth failing the upload over.
		slog.Warn("thumbnail generation failed", "file", name, "error", err)
	}

	stored := "uploads/profile-photos/" + name
	if err := s.users.UpdateProfilePhoto(ctx, userID, &stored); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	s.removeFiles(user.ProfilePhoto)
	return stored, nil
}

func (s *UploadService) RemoveProfilePhoto(ctx context.Context, userID int64) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.ProfilePhoto == nil || *user.ProfilePhoto == "" {
		return nil
	}

	if err := s.users.UpdateProfilePhoto(ctx, userID, nil); err != nil {
		return err
	}

	s.removeFiles(user.ProfilePhoto)
	return nil
}

func (s *UploadService) writeThumbnail(src image.Image, name string) error {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	maxDim := width
	if height > maxDim {
		maxDim = height
	}
	scale := float64(thumbnailSize) / float64(maxDim)
	if scale > 1 {
		scale = 1
	}

	targetWidth := int(math.Round(float64(width) * scale))
	targetHeight := int(math.Round(float64(height) * scale))
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	writer, err := os.OpenFile(s.thumbnailPath(name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	encodeErr := jpeg.Encode(writer, dst, &jpeg.Options{Quality: 85})
	closeErr := writer.Close()
	if encodeErr != nil {
		return encodeErr
	}
	return closeErr
}

// removeFiles deletes a previously stored photo and its thumbnail. Failures
// are logged, not surfaced: the replacement already succeeded.
func (s *UploadService) removeFiles(stored *string) {
	if stored == nil || *stored == "" {
		return
	}

	name := filepath.Base(*stored)
	if err := os.Remove(filepath.Join(s.uploadRoot, name)); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not delete old profile photo", "file", name, "error", err)
	}
	if err := os.Remove(s.thumbnailPath(name)); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not delete old thumbnail", "file", name, "error", err)
	}
}

func (s *UploadService) thumbnailPath(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(s.thumbnailRoot, base+".jpg")
}
