// Package detection turns frames into cart-ready detections: preprocess,
// classify, threshold, exclude the non-product class, map to the catalog.
package detection

import (
	"errors"
	"image"
	"log"

	"github.com/sony/gobreaker/v2"

	"github.com/elbara99/ai-counter-cafeteria/internal/camera"
	"github.com/elbara99/ai-counter-cafeteria/internal/catalog"
	"github.com/elbara99/ai-counter-cafeteria/internal/classifier"
	"github.com/elbara99/ai-counter-cafeteria/internal/domain"
)

const (
	// DefaultThreshold is the minimum confidence for a detection.
	DefaultThreshold = 0.5

	// boxScale sizes the cosmetic bounding box relative to the shorter
	// frame dimension.
	boxScale = 0.6
)

// Classifier is the slice of the adapter the pipeline needs.
type Classifier interface {
	Classify(frame image.Image) (classifier.Classification, error)
}

// Pipeline runs one detection cycle at a time. Runtime inference failures are
// downgraded to "no detection" so a transient camera or model hiccup never
// halts polling; repeated failures open a circuit breaker that is likewise
// treated as an empty cycle.
type Pipeline struct {
	cls       Classifier
	catalog   *catalog.Catalog
	threshold float64
	breaker   *gobreaker.CircuitBreaker[classifier.Classification]
}

// New builds a pipeline over the given classifier and catalog.
func New(cls Classifier, cat *catalog.Catalog) *Pipeline {
	breaker := gobreaker.NewCircuitBreaker[classifier.Classification](gobreaker.Settings{
		Name: "classifier",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Not-ready conditions are part of normal operation and
			// must not count against the model runtime.
			return err == nil ||
				errors.Is(err, classifier.ErrFrameNotReady) ||
				errors.Is(err, classifier.ErrModelNotLoaded)
		},
	})
	return &Pipeline{
		cls:       cls,
		catalog:   cat,
		threshold: DefaultThreshold,
		breaker:   breaker,
	}
}

// Detect runs one cycle against the frame source and returns zero or one
// detection. The only error it ever propagates is ErrModelNotLoaded; callers
// are expected to check readiness before starting detection, and if they did
// not, this fails fast instead of silently returning empty.
func (p *Pipeline) Detect(src camera.FrameSource) ([]domain.Detection, error) {
	width, height, ok := src.Dimensions()
	if !ok {
		return nil, nil
	}

	frame, err := src.Frame()
	if err != nil {
		if !errors.Is(err, camera.ErrFrameNotReady) {
			log.Printf("frame acquisition failed: %v", err)
		}
		return nil, nil
	}

	result, err := p.breaker.Execute(func() (classifier.Classification, error) {
		return p.cls.Classify(frame)
	})
	if err != nil {
		switch {
		case errors.Is(err, classifier.ErrModelNotLoaded):
			return nil, classifier.ErrModelNotLoaded
		case errors.Is(err, classifier.ErrFrameNotReady):
			return nil, nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, nil
		default:
			log.Printf("inference failed: %v", err)
			return nil, nil
		}
	}

	if result.Confidence < p.threshold {
		return nil, nil
	}
	if p.catalog.Excluded(result.Label) {
		// The non-product class never yields a detection, no matter how
		// confident the model is.
		return nil, nil
	}
	product, found := p.catalog.Match(result.Label)
	if !found {
		return nil, nil
	}

	return []domain.Detection{{
		Product:    product,
		Label:      result.Label,
		Confidence: result.Confidence,
		Box:        centeredBox(width, height),
	}}, nil
}

// centeredBox returns a square at 60% of the shorter frame dimension,
// centered on the frame. The model produces no localization; the box is
// display dressing only.
func centeredBox(width, height int) domain.BoundingBox {
	short := width
	if height < short {
		short = height
	}
	side := int(boxScale * float64(short))
	r := image.Rect((width-side)/2, (height-side)/2, (width-side)/2+side, (height-side)/2+side)
	return domain.BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}
