package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// localStore keeps images on disk under <baseDir>/events and hands out
// references of the form /uploads/events/<filename>, which the router
// serves statically.
type localStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (Store, error) {
	dir := filepath.Join(baseDir, "events")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localStore{baseDir: baseDir}, nil
}

func (s *localStore) Upload(ctx context.Context, file File) (string, error) {
	if err := validate(file); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Name))
	name := fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)
	dst := filepath.Join(s.baseDir, "events", name)

	if err := os.WriteFile(dst, file.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return "/uploads/events/" + name, nil
}

func (s *localStore) Delete(ctx context.Context, ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// resolve maps an /uploads/... reference back to a path inside baseDir,
// rejecting anything that escapes it.
func (s *localStore) resolve(ref string) (string, error) {
	rel, ok := strings.CutPrefix(ref, "/uploads/")
	if !ok {
		return "", ErrUnknownRef
	}

	path := filepath.Clean(filepath.Join(s.baseDir, rel))
	if !strings.HasPrefix(path, filepath.Clean(s.baseDir)) {
		return "", ErrUnknownRef
	}
	return path, nil
}
