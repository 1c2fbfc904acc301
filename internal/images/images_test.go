package images

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestDeterministicNames(t *testing.T) {
	if got := TaskImageName(42, "uuid-1"); got != "42_uuid-1.jpeg" {
		t.Errorf("TaskImageName = %q", got)
	}
	if got := AvatarName("uuid-1"); got != "uuid-1.jpeg" {
		t.Errorf("AvatarName = %q", got)
	}
	if got := TaskImageURL("http://localhost:8080", 42, "uuid-1"); got != "http://localhost:8080/uploads/task_images/42_uuid-1.jpeg" {
		t.Errorf("TaskImageURL = %q", got)
	}
	if got := AvatarURL("http://localhost:8080", "uuid-1"); got != "http://localhost:8080/uploads/avatars/uuid-1.jpeg" {
		t.Errorf("AvatarURL = %q", got)
	}
}

func TestSaveAndDeleteTaskImage(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveTaskImage(7, "uuid-1", strings.NewReader("jpeg bytes")); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(store.Root(), "task_images", "7_uuid-1.jpeg")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("image file missing: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("file content = %q", data)
	}

	// Overwrite replaces the previous content at the same path.
	if err := store.SaveTaskImage(7, "uuid-1", strings.NewReader("newer bytes")); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "newer bytes" {
		t.Errorf("overwritten content = %q", data)
	}

	if err := store.DeleteTaskImage(7, "uuid-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("image file should be gone")
	}

	// Deleting an image that was never written is a no-op.
	if err := store.DeleteTaskImage(999, "uuid-1"); err != nil {
		t.Errorf("delete of absent image: %v", err)
	}
}

func TestSaveAvatarContentTypes(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{name: "jpeg", contentType: "image/jpeg"},
		{name: "png", contentType: "image/png"},
		{name: "gif rejected", contentType: "image/gif", wantErr: true},
		{name: "text rejected", contentType: "text/plain", wantErr: true},
		{name: "empty rejected", contentType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveAvatar("uuid-1", tt.contentType, strings.NewReader("img"))
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedImage) {
					t.Errorf("error = %v, want ErrUnsupportedImage", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
