package classifier

import "errors"

var (
	// ErrModelNotLoaded is returned when inference is attempted before a
	// successful Load. Callers are expected to check Ready first.
	ErrModelNotLoaded = errors.New("classifier model is not loaded")

	// ErrAlreadyLoading signals that another Load is in flight. The caller
	// must not block or queue; it simply did not start a load.
	ErrAlreadyLoading = errors.New("classifier model load already in progress")

	// ErrFrameNotReady means the frame source produced no decodable frame
	// yet. Not a failure: the cycle just yields no detection.
	ErrFrameNotReady = errors.New("frame not ready")
)
