package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/google/uuid"
)

// UploadURLPrefix is the public path uploaded images are served under.
const UploadURLPrefix = "/uploads/"

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var errNotAnImage = apperror.Validation("only jpeg, png, gif and webp images are allowed")

// ImageStore keeps product images on local disk.
type ImageStore struct {
	dir      string
	maxBytes int64
}

func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// MaxBytes is the largest accepted upload.
func (s *ImageStore) MaxBytes() int64 {
	return s.maxBytes
}

// Dir is the directory images are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save stores an uploaded image under a random name and returns its public URL.
// The type is detected from the content, not the client-supplied name.
func (s *ImageStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxBytes {
		return "", apperror.Validation(fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", errNotAnImage
	}
	ext, ok := allowedImageTypes[http.DetectContentType(sniff[:n])]
	if !ok {
		return "", errNotAnImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.New().String() + ext
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(file, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = apperror.Validation(fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}
	if err != nil {
		os.Remove(filepath.Join(s.dir, name))
		return "", err
	}

	return UploadURLPrefix + name, nil
}

// Remove deletes the file behind an image URL. URLs outside the upload
// prefix are ignored. Failures are logged only.
func (s *ImageStore) Remove(imageURL string) {
	name, ok := strings.CutPrefix(imageURL, UploadURLPrefix)
	if !ok || name == "" || name != filepath.Base(name) {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[API] Failed to remove image %s: %v", name, err)
	}
}
