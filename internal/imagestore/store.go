// Package imagestore ingests base64 image payloads and keeps them in a
// pluggable backend under generated, unique names.
package imagestore

import (
	"context"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pastelaria-service/pkg/logger"
)

// Dir is the directory every reference lives under
const Dir = "img"

// Reference is the stable relative path of stored content, e.g. img/<hex>.png
type Reference string

func (r Reference) String() string { return string(r) }

// Name returns the file name part of the reference
func (r Reference) Name() string { return path.Base(string(r)) }

var referencePattern = regexp.MustCompile(`^` + Dir + `/[0-9a-f]{32}\.[a-z0-9]+$`)

// ReferenceFromName rebuilds a reference from its file name
func ReferenceFromName(name string) (Reference, bool) {
	ref := Reference(Dir + "/" + name)
	return ref, referencePattern.MatchString(string(ref))
}

// Backend persists raw objects under a key. Put must be atomic: a reader
// never observes a partially written object.
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var extensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/bmp":     "bmp",
}

const fallbackExt = "bin"

// Store validates, decodes and writes image payloads
type Store struct {
	backend Backend
}

// New creates a store on top of backend
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Store decodes payload, which may carry a data URI prefix, writes it under a
// fresh name and returns its reference. Invalid payloads fail with
// ErrInvalidBinaryContent before anything is written.
func (s *Store) Store(ctx context.Context, payload string) (Reference, error) {
	mediaType, encoded, ok := splitDataURI(payload)
	if !ok {
		return "", &ContentError{Op: "store", Err: ErrInvalidBinaryContent}
	}

	data, ok := decode(encoded)
	if !ok || len(data) == 0 {
		return "", &ContentError{Op: "store", Err: ErrInvalidBinaryContent}
	}

	ext, ok := extensions[mediaType]
	if !ok {
		mediaType = http.DetectContentType(data)
		if i := strings.IndexByte(mediaType, ';'); i >= 0 {
			mediaType = mediaType[:i]
		}
		if ext, ok = extensions[mediaType]; !ok {
			ext = fallbackExt
			mediaType = "application/octet-stream"
		}
	}

	ref := Reference(Dir + "/" + strings.ReplaceAll(uuid.New().String(), "-", "") + "." + ext)
	if err := s.backend.Put(ctx, string(ref), data, mediaType); err != nil {
		return "", &ContentError{Op: "store", Ref: ref, Err: err}
	}

	logger.FromCtx(ctx).Debug("Image stored",
		zap.String("reference", ref.String()),
		zap.String("content_type", mediaType),
		zap.Int("size", len(data)))
	return ref, nil
}

// Owns reports whether ref has the store's reference shape and names content
// the backend currently holds
func (s *Store) Owns(ctx context.Context, ref string) (bool, error) {
	if !referencePattern.MatchString(ref) {
		return false, nil
	}
	return s.backend.Exists(ctx, ref)
}

// Open streams stored content together with its content type
func (s *Store) Open(ctx context.Context, ref Reference) (io.ReadCloser, string, error) {
	if !referencePattern.MatchString(string(ref)) {
		return nil, "", &ContentError{Op: "open", Ref: ref, Err: ErrObjectNotFound}
	}
	rc, err := s.backend.Open(ctx, string(ref))
	if err != nil {
		return nil, "", &ContentError{Op: "open", Ref: ref, Err: err}
	}
	return rc, ContentType(ref), nil
}

// Discard removes stored content
func (s *Store) Discard(ctx context.Context, ref Reference) error {
	if err := s.backend.Delete(ctx, string(ref)); err != nil {
		return &ContentError{Op: "discard", Ref: ref, Err: err}
	}
	return nil
}

// ContentType derives the media type from the reference extension
func ContentType(ref Reference) string {
	ext := strings.TrimPrefix(path.Ext(string(ref)), ".")
	for mediaType, e := range extensions {
		if e == ext {
			return mediaType
		}
	}
	return "application/octet-stream"
}

// splitDataURI strips an optional "data:<media-type>;base64," prefix
func splitDataURI(payload string) (mediaType, encoded string, ok bool) {
	if !strings.HasPrefix(payload, "data:") {
		return "", payload, true
	}
	header, encoded, found := strings.Cut(strings.TrimPrefix(payload, "data:"), ",")
	if !found || !strings.HasSuffix(header, ";base64") {
		return "", "", false
	}
	mediaType, _, _ = strings.Cut(strings.TrimSuffix(header, ";base64"), ";")
	return strings.ToLower(mediaType), encoded, true
}
