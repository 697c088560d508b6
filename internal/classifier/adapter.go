package classifier

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"
)

// Classification is the result of one inference: the arg-max label, its
// probability mass and the full score vector in model label order.
type Classification struct {
	Label      string
	Confidence float64
	Scores     []float64
}

// Adapter owns the pretrained model for the process lifetime. Load is
// idempotent and guarded against duplicate concurrent starts; once ready the
// adapter stays ready (there is no unload).
//
// Classify reuses preallocated buffers for resizing and activations, so
// repeated polling does not grow memory.
type Adapter struct {
	loading atomic.Bool
	ready   atomic.Bool

	mu      sync.Mutex
	model   *model
	resized *image.RGBA
	input   []float64
	scratch []float64
	scores  []float64
}

// NewAdapter returns an adapter with no model loaded yet.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Load reads the model description at path and its weights shard. A second
// call after success is a no-op; a call while another load is in flight
// returns ErrAlreadyLoading without blocking.
func (a *Adapter) Load(path string) error {
	if a.ready.Load() {
		return nil
	}
	if !a.loading.CompareAndSwap(false, true) {
		return ErrAlreadyLoading
	}
	defer a.loading.Store(false)

	m, err := loadModel(path)
	if err != nil {
		return fmt.Errorf("model load failed: %w", err)
	}

	a.mu.Lock()
	a.model = m
	a.resized = image.NewRGBA(image.Rect(0, 0, m.inputW, m.inputH))
	inputLen := m.inputW * m.inputH * m.channels
	bufLen := inputLen
	if s := m.maxScratch(); s > bufLen {
		bufLen = s
	}
	a.input = make([]float64, bufLen)
	a.scratch = make([]float64, m.maxScratch())
	a.scores = make([]float64, len(m.labels))
	a.mu.Unlock()

	a.ready.Store(true)
	return nil
}

// Ready reports whether a successful Load has completed.
func (a *Adapter) Ready() bool {
	return a.ready.Load()
}

// Labels returns the model label set, in score order. Nil before Load.
func (a *Adapter) Labels() []string {
	if !a.ready.Load() {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.model.labels))
	copy(out, a.model.labels)
	return out
}

// Classify resizes the frame to the model input, runs the forward pass and
// returns the winning label. Ties on the score vector resolve to the first
// label in model order. A nil or empty frame yields ErrFrameNotReady.
func (a *Adapter) Classify(frame image.Image) (Classification, error) {
	if !a.ready.Load() {
		return Classification{}, ErrModelNotLoaded
	}
	if frame == nil || frame.Bounds().Dx() == 0 || frame.Bounds().Dy() == 0 {
		return Classification{}, ErrFrameNotReady
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	draw.ApproxBiLinear.Scale(a.resized, a.resized.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	a.normalize()
	a.model.forward(a.input, a.scratch, a.scores)

	best := 0
	for i := 1; i < len(a.scores); i++ {
		if a.scores[i] > a.scores[best] {
			best = i
		}
	}

	scores := make([]float64, len(a.scores))
	copy(scores, a.scores)
	return Classification{
		Label:      a.model.labels[best],
		Confidence: a.scores[best],
		Scores:     scores,
	}, nil
}

// normalize flattens the resized RGBA buffer into the input vector, scaling
// channel values to [0,1]. Alpha is dropped.
func (a *Adapter) normalize() {
	px := a.resized.Pix
	channels := a.model.channels
	n := a.model.inputW * a.model.inputH
	for i := 0; i < n; i++ {
		for c := 0; c < channels; c++ {
			a.input[i*channels+c] = float64(px[i*4+c]) / 255.0
		}
	}
}
