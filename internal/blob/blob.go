package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidRef = errors.New("invalid blob reference")
)

// Store keeps meal photos under a per-owner namespace.
type Store interface {
	Put(ctx context.Context, ownerID uint, body io.Reader, contentType string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
	// URL returns a directly fetchable address for ref, or "" when the
	// photo can only be streamed through Open.
	URL(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
	DeleteOwner(ctx context.Context, ownerID uint) error
}

const rootPrefix = "images"

// NewKey builds images/<owner>/<unix millis>-<uuid>.<ext>.
func NewKey(ownerID uint, contentType string, now time.Time) string {
	return fmt.Sprintf("%s%d-%s%s", ownerPrefix(ownerID), now.UnixMilli(), uuid.NewString(), extensionFor(contentType))
}

func ownerPrefix(ownerID uint) string {
	return fmt.Sprintf("%s/%d/", rootPrefix, ownerID)
}

// OwnerOf reports whether ref lives under ownerID's namespace.
func OwnerOf(ref string, ownerID uint) bool {
	return validRef(ref) == nil && strings.HasPrefix(ref, ownerPrefix(ownerID))
}

func validRef(ref string) error {
	if ref == "" || path.Clean(ref) != ref || !strings.HasPrefix(ref, rootPrefix+"/") {
		return ErrInvalidRef
	}
	return nil
}

func extensionFor(contentType string) string {
	mediaType, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	switch strings.TrimSpace(mediaType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}

func contentTypeFor(ref string) string {
	switch path.Ext(ref) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
