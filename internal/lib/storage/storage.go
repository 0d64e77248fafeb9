// Package storage keeps uploaded 3D assets on the local disk.
//
// Files are treated as opaque blobs; only the leading bytes are sniffed to
// decide whether an upload is a binary glTF (.glb) or a JSON glTF (.gltf).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/kelvin262292/storefront/internal/config"
	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/model"
)

const (
	MimeGLB  = "model/gltf-binary"
	MimeGLTF = "model/gltf+json"
)

// Asset describes a stored file.
type Asset struct {
	URL         string
	Path        string
	Format      model.ModelFormat
	ContentType string
	SizeBytes   int64
}

// Storage writes assets below Dir and addresses them below PublicPrefix.
type Storage struct {
	dir          string
	publicPrefix string
	maxBytes     int64
}

func New(cfg config.StorageConfig) *Storage {
	return &Storage{
		dir:          cfg.AssetDir,
		publicPrefix: "/" + strings.Trim(cfg.PublicPrefix, "/"),
		maxBytes:     cfg.MaxUploadBytes,
	}
}

func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) PublicPrefix() string {
	return s.publicPrefix
}

// Sniff classifies data as a glTF asset.
func Sniff(data []byte) (model.ModelFormat, string, error) {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is(MimeGLB):
		return model.ModelFormatGLB, MimeGLB, nil
	case mtype.Is(MimeGLTF):
		return model.ModelFormatGLTF, MimeGLTF, nil
	}

	code := "UNSUPPORTED_MODEL_FORMAT"
	return "", mtype.String(), errs.NewBadRequestError(
		fmt.Sprintf("Unsupported 3D model content type %s, expected glb or gltf", mtype.String()),
		true, &code, nil, nil,
	)
}

// SaveModel reads r fully (up to the configured limit), checks that it is a
// glTF asset and writes it under products/<id>/.
func (s *Storage) SaveModel(ctx context.Context, productID uint, r io.Reader) (*Asset, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, errs.NewPayloadTooLargeError(fmt.Sprintf("Model files may not exceed %d bytes", s.maxBytes))
	}
	if len(data) == 0 {
		code := "EMPTY_UPLOAD"
		return nil, errs.NewBadRequestError("Uploaded file is empty", true, &code, nil, nil)
	}

	format, contentType, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := path.Join("products", fmt.Sprint(productID), uuid.NewString()+"."+string(format))
	full := filepath.Join(s.dir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}

	// Written to a temp name first so a partially written file is never served.
	tmp := full + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write asset: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("failed to finalize asset: %w", err)
	}

	return &Asset{
		URL:         s.publicPrefix + "/" + rel,
		Path:        full,
		Format:      format,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}, nil
}

// Owns reports whether url points into this storage.
func (s *Storage) Owns(url string) bool {
	return strings.HasPrefix(url, s.publicPrefix+"/")
}

// Delete removes the file behind a public URL. URLs outside the storage
// and files that are already gone are ignored.
func (s *Storage) Delete(url string) error {
	if !s.Owns(url) {
		return nil
	}

	rel := path.Clean("/" + strings.TrimPrefix(url, s.publicPrefix+"/"))
	full := filepath.Join(s.dir, filepath.FromSlash(rel))

	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}
