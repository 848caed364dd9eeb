package staging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
)

// ErrUnknownHandle is returned by Get for handles the store never issued.
var ErrUnknownHandle = errors.New("unknown staging handle")

// Store keeps trimmed frame pixels between trimming and composition.
// Handles returned by Put are stored in model.Frame.Source.
type Store interface {
	Put(index int, img image.Image) (string, error)
	Get(handle string) (image.Image, error)
	Cleanup() error
}

// FrameFileName returns the staged file name for a frame index.
func FrameFileName(index int) string {
	return fmt.Sprintf("frame%07d.png", index)
}

// DirStore stages frames as PNG files in a private temporary directory.
type DirStore struct {
	dir  string
	keep bool
}

// NewDirStore creates a uniquely named staging directory under parent.
// An empty parent uses the system temporary directory. When keep is set,
// Cleanup leaves the files on disk.
func NewDirStore(parent string, keep bool) (*DirStore, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return nil, fmt.Errorf("failed to create staging parent: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "spritepack-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &DirStore{dir: dir, keep: keep}, nil
}

// Dir returns the staging directory.
func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) Put(index int, img image.Image) (string, error) {
	path := filepath.Join(s.dir, FrameFileName(index))
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to stage frame %d: %w", index, err)
	}
	return path, nil
}

func (s *DirStore) Get(handle string) (image.Image, error) {
	if filepath.Dir(handle) != s.dir {
		return nil, fmt.Errorf("%s: %w", handle, ErrUnknownHandle)
	}
	img, err := imaging.Open(handle)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged frame: %w", err)
	}
	return img, nil
}

// Cleanup deletes every staged file and the directory itself. Files that
// could not be deleted are reported together in the returned error.
func (s *DirStore) Cleanup() error {
	if s.keep {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list staging directory: %w", err)
	}

	var errs []error
	for _, e := range entries {
		path := filepath.Join(s.dir, e.Name())
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("could not delete %s: %w", path, err))
		}
	}
	if len(errs) == 0 {
		if err := os.Remove(s.dir); err != nil {
			errs = append(errs, fmt.Errorf("could not delete %s: %w", s.dir, err))
		}
	}
	return errors.Join(errs...)
}

// MemoryStore keeps staged frames in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	frames map[string]*image.NRGBA
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{frames: make(map[string]*image.NRGBA)}
}

func (s *MemoryStore) Put(index int, img image.Image) (string, error) {
	handle := "mem:" + FrameFileName(index)
	clone := imaging.Clone(img)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[handle] = clone
	return handle, nil
}

func (s *MemoryStore) Get(handle string) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.frames[handle]
	if !ok {
		return nil, fmt.Errorf("%s: %w", handle, ErrUnknownHandle)
	}
	return img, nil
}

// Handles returns the staged handles in sorted order.
func (s *MemoryStore) Handles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.frames))
	for h := range s.frames {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func (s *MemoryStore) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.frames)
	return nil
}
