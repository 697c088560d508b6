package camera

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func TestStart_ProbesDimensions(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame-001.png", 640, 480)
	writeFrame(t, dir, "frame-002.png", 640, 480)

	cam := NewFileCamera(dir)
	require.NoError(t, cam.Start())
	defer cam.Stop()

	w, h, ok := cam.Dimensions()
	require.True(t, ok)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestStart_MissingDirectory(t *testing.T) {
	cam := NewFileCamera(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, cam.Start(), ErrNoDevice)
}

func TestStart_EmptyDirectory(t *testing.T) {
	cam := NewFileCamera(t.TempDir())
	require.ErrorIs(t, cam.Start(), ErrNoDevice)
}

func TestStart_NoDecodableFrames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644))

	cam := NewFileCamera(dir)
	require.ErrorIs(t, cam.Start(), ErrUnsupported)
}

func TestStart_Twice(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame.png", 8, 8)

	cam := NewFileCamera(dir)
	require.NoError(t, cam.Start())
	defer cam.Stop()

	require.ErrorIs(t, cam.Start(), ErrDeviceBusy)
}

func TestFrame_CyclesThroughFiles(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a.png", 8, 8)
	writeFrame(t, dir, "b.png", 16, 16)

	cam := NewFileCamera(dir)
	require.NoError(t, cam.Start())
	defer cam.Stop()

	first, err := cam.Frame()
	require.NoError(t, err)
	second, err := cam.Frame()
	require.NoError(t, err)
	third, err := cam.Frame()
	require.NoError(t, err)

	assert.Equal(t, 8, first.Bounds().Dx())
	assert.Equal(t, 16, second.Bounds().Dx())
	assert.Equal(t, 8, third.Bounds().Dx(), "sequence wraps around")
}

func TestFrame_BeforeStart(t *testing.T) {
	cam := NewFileCamera(t.TempDir())

	_, err := cam.Frame()
	require.ErrorIs(t, err, ErrNotStarted)

	_, _, ok := cam.Dimensions()
	assert.False(t, ok)
}

func TestFrame_UndecodableFileIsNotReady(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a.png", 8, 8)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("junk"), 0o644))

	cam := NewFileCamera(dir)
	require.NoError(t, cam.Start())
	defer cam.Stop()

	_, err := cam.Frame() // a.png
	require.NoError(t, err)
	_, err = cam.Frame() // b.png
	require.ErrorIs(t, err, ErrFrameNotReady)
	_, err = cam.Frame() // wraps to a.png
	require.NoError(t, err)
}

func TestUserMessage_DistinctPerKind(t *testing.T) {
	msgs := map[string]bool{}
	for _, err := range []error{ErrPermissionDenied, ErrNoDevice, ErrDeviceBusy, ErrUnsupported, ErrNotStarted} {
		msg := UserMessage(err)
		assert.NotEmpty(t, msg)
		assert.False(t, msgs[msg], "message %q reused", msg)
		msgs[msg] = true
	}
}
