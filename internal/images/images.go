// Package images stores task and avatar image files under the uploads
// directory with deterministic names, so URLs can be derived without a
// database lookup.
package images

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrUnsupportedImage is returned for content types outside the JPG/PNG
// allow-list.
var ErrUnsupportedImage = errors.New("only JPEG and PNG images are supported")

const (
	taskImagesDir = "task_images"
	avatarsDir    = "avatars"
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// Store writes image files below a root uploads directory.
type Store struct {
	root string
}

// NewStore creates the uploads directory tree if needed.
func NewStore(root string) (*Store, error) {
	for _, sub := range []string{taskImagesDir, avatarsDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create uploads dir: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the uploads directory the store writes to.
func (s *Store) Root() string {
	return s.root
}

// TaskImageName builds the deterministic file name for a task image.
func TaskImageName(taskID int64, ownerID string) string {
	return fmt.Sprintf("%d_%s.jpeg", taskID, ownerID)
}

// AvatarName builds the deterministic file name for a user avatar.
func AvatarName(ownerID string) string {
	return ownerID + ".jpeg"
}

// TaskImageURL derives the public URL for a task image. The URL is produced
// whether or not an image was ever uploaded; see Engine.serializeTask.
func TaskImageURL(baseURL string, taskID int64, ownerID string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", baseURL, taskImagesDir, TaskImageName(taskID, ownerID))
}

// AvatarURL derives the public URL for a user avatar.
func AvatarURL(baseURL, ownerID string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", baseURL, avatarsDir, AvatarName(ownerID))
}

// SaveTaskImage writes (or overwrites) the image attached to a task.
func (s *Store) SaveTaskImage(taskID int64, ownerID string, r io.Reader) error {
	return s.save(filepath.Join(taskImagesDir, TaskImageName(taskID, ownerID)), r)
}

// DeleteTaskImage removes a task image. Deleting a file that was never
// written is a no-op.
func (s *Store) DeleteTaskImage(taskID int64, ownerID string) error {
	err := os.Remove(filepath.Join(s.root, taskImagesDir, TaskImageName(taskID, ownerID)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete task image: %w", err)
	}
	return nil
}

// SaveAvatar writes a user avatar after checking the content type.
func (s *Store) SaveAvatar(ownerID, contentType string, r io.Reader) error {
	if _, ok := allowedContentTypes[contentType]; !ok {
		return ErrUnsupportedImage
	}
	return s.save(filepath.Join(avatarsDir, AvatarName(ownerID)), r)
}

func (s *Store) save(rel string, r io.Reader) error {
	path := filepath.Join(s.root, rel)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}
	return nil
}
