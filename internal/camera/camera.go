// Package camera abstracts the frame capture device. The detection pipeline
// only needs the current frame and its pixel dimensions; everything else
// (device lifecycle, access failures) stays behind the FrameSource contract.
package camera

import (
	"errors"
	"image"
)

// FrameSource supplies frames to the detection pipeline.
type FrameSource interface {
	// Frame returns the most recent frame. Before the source has produced
	// anything decodable it returns ErrFrameNotReady.
	Frame() (image.Image, error)

	// Dimensions reports the native frame size. ok is false until the
	// source knows its geometry.
	Dimensions() (width, height int, ok bool)
}

// Access failure sub-kinds. Each maps to a distinct user-facing message and
// none of them is retried automatically.
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrNoDevice         = errors.New("no camera device found")
	ErrDeviceBusy       = errors.New("camera device is busy")
	ErrUnsupported      = errors.New("camera produces no supported frames")
	ErrNotStarted       = errors.New("camera is not started")
	ErrFrameNotReady    = errors.New("camera frame not ready")
)

// UserMessage maps a camera error to the message shown on the counter display.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Camera access was denied. Allow camera access and try again."
	case errors.Is(err, ErrNoDevice):
		return "No camera was found. Connect a camera and try again."
	case errors.Is(err, ErrDeviceBusy):
		return "The camera is in use by another application."
	case errors.Is(err, ErrUnsupported):
		return "The camera does not support the required capture format."
	case errors.Is(err, ErrNotStarted):
		return "The camera is not running."
	default:
		return "Camera error: " + err.Error()
	}
}
