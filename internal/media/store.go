package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fraccaro/event-calendar-backend/config"
)

// MaxFileSize caps a single image upload at 10MB
const MaxFileSize = 10 * 1024 * 1024

var (
	ErrNotAnImage = errors.New("not an image! please upload only images")
	ErrFileTooBig = errors.New("image exceeds the 10MB size limit")
	ErrUnknownRef = errors.New("unrecognized gallery reference")
)

// File is one image payload submitted for upload
type File struct {
	Name        string // original filename; its extension drives the stored name
	ContentType string
	Data        []byte
}

// Store is the remote media store: images go in, a stable reference comes
// back, and references can later be deleted independently of each other.
type Store interface {
	Upload(ctx context.Context, file File) (string, error)
	Delete(ctx context.Context, ref string) error
}

// NewStore builds the configured store implementation
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.MediaDriver {
	case "local", "":
		return NewLocalStore(cfg.UploadDir)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown media driver: %s", cfg.MediaDriver)
	}
}

func validate(file File) error {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return ErrNotAnImage
	}
	if len(file.Data) > MaxFileSize {
		return ErrFileTooBig
	}
	return nil
}
