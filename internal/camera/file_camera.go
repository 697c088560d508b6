package camera

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileCamera replays still images from a directory as a capture device, in
// name order, wrapping around. It stands in for a live camera on machines
// without one and in tests.
type FileCamera struct {
	dir string

	mu      sync.Mutex
	started bool
	files   []string
	next    int
	width   int
	height  int
}

// NewFileCamera returns a camera over the png/jpeg files in dir. Nothing is
// touched until Start.
func NewFileCamera(dir string) *FileCamera {
	return &FileCamera{dir: dir}
}

// Start scans the directory and decodes the first usable frame to learn the
// native dimensions. Failures map onto the camera access taxonomy.
func (c *FileCamera) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrDeviceBusy
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoDevice
		}
		if os.IsPermission(err) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("failed to open frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(c.dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return ErrNoDevice
	}
	sort.Strings(files)

	// Probe for the first decodable frame; a directory of undecodable
	// files counts as an unsupported device.
	probed := false
	for _, f := range files {
		img, err := decodeFrame(f)
		if err != nil {
			continue
		}
		c.width = img.Bounds().Dx()
		c.height = img.Bounds().Dy()
		probed = true
		break
	}
	if !probed {
		return ErrUnsupported
	}

	c.files = files
	c.next = 0
	c.started = true
	return nil
}

// Stop releases the device. Frame and Dimensions fail afterwards until the
// next Start.
func (c *FileCamera) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	c.files = nil
	c.width, c.height = 0, 0
}

// Frame decodes the next frame in sequence, wrapping around at the end. An
// undecodable file is skipped as a not-yet-ready frame.
func (c *FileCamera) Frame() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil, ErrNotStarted
	}

	path := c.files[c.next]
	c.next = (c.next + 1) % len(c.files)

	img, err := decodeFrame(path)
	if err != nil {
		return nil, ErrFrameNotReady
	}
	return img, nil
}

// Dimensions reports the probed frame size; ok is false before Start.
func (c *FileCamera) Dimensions() (int, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return 0, 0, false
	}
	return c.width, c.height, true
}

func decodeFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
