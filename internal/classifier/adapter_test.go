package classifier

import (
	"encoding/binary"
	"encoding/json"
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestModel lays out a single-layer model whose weights are all zero, so
// the softmax output depends only on the biases. That makes inference
// deterministic regardless of the frame content.
func writeTestModel(t *testing.T, labels []string, biases []float32) string {
	t.Helper()
	dir := t.TempDir()

	const w, h, ch = 8, 8, 3
	topo := map[string]any{
		"name": "test-classifier",
		"input": map[string]int{
			"width":    w,
			"height":   h,
			"channels": ch,
		},
		"labels": labels,
		"layers": []map[string]any{
			{"activation": "linear", "rows": w * h * ch, "cols": len(labels)},
		},
		"weights": "weights.bin",
	}
	raw, err := json.Marshal(topo)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.json"), raw, 0o644))

	shard := make([]byte, (w*h*ch*len(labels)+len(biases))*4)
	offset := w * h * ch * len(labels) * 4
	for i, b := range biases {
		binary.LittleEndian.PutUint32(shard[offset+i*4:], math.Float32bits(b))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weights.bin"), shard, 0o644))

	return filepath.Join(dir, "model.json")
}

func testFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 64, 48))
}

func TestClassify_BeforeLoad(t *testing.T) {
	a := NewAdapter()

	_, err := a.Classify(testFrame())
	require.ErrorIs(t, err, ErrModelNotLoaded)
	assert.False(t, a.Ready())
}

func TestLoad_Success(t *testing.T) {
	path := writeTestModel(t, []string{"caffee", "water", "empty"}, []float32{2, 0, -2})
	a := NewAdapter()

	require.NoError(t, a.Load(path))
	assert.True(t, a.Ready())
	assert.Equal(t, []string{"caffee", "water", "empty"}, a.Labels())
}

func TestLoad_Idempotent(t *testing.T) {
	path := writeTestModel(t, []string{"caffee", "water", "empty"}, []float32{2, 0, -2})
	a := NewAdapter()

	require.NoError(t, a.Load(path))
	// A second load after success is a no-op even with a bogus path.
	require.NoError(t, a.Load("does-not-exist.json"))
	assert.True(t, a.Ready())
}

func TestLoad_AlreadyLoading(t *testing.T) {
	path := writeTestModel(t, []string{"caffee", "water", "empty"}, []float32{2, 0, -2})
	a := NewAdapter()

	// Simulate a load in flight; the second caller gets a non-success
	// signal instead of blocking or queuing.
	a.loading.Store(true)
	require.ErrorIs(t, a.Load(path), ErrAlreadyLoading)
	a.loading.Store(false)

	require.NoError(t, a.Load(path))
}

func TestLoad_MissingArtifact(t *testing.T) {
	a := NewAdapter()

	err := a.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.False(t, a.Ready())

	// A failed load leaves the adapter usable for an explicit retry.
	path := writeTestModel(t, []string{"caffee", "water", "empty"}, []float32{2, 0, -2})
	require.NoError(t, a.Load(path))
}

func TestClassify_DeterministicBiases(t *testing.T) {
	// With zero weights the logits equal the biases:
	// softmax(2, 0, -2) ≈ (0.8668, 0.1173, 0.0159).
	path := writeTestModel(t, []string{"caffee", "water", "empty"}, []float32{2, 0, -2})
	a := NewAdapter()
	require.NoError(t, a.Load(path))

	result, err := a.Classify(testFrame())
	require.NoError(t, err)
	assert.Equal(t, "caffee", result.Label)
	assert.InDelta(t, 0.8668, result.Confidence, 0.001)
	require.Len(t, result.Scores, 3)
	assert.InDelta(t, 1.0, result.Scores[0]+result.Scores[1]+result.Scores[2], 1e-9)
}

func TestClassify_TieBreaksToFirstLabel(t *testing.T) {
	path := writeTestModel(t, []string{"caffee", "water", "empty"}, []float32{1, 1, 0})
	a := NewAdapter()
	require.NoError(t, a.Load(path))

	result, err := a.Classify(testFrame())
	require.NoError(t, err)
	assert.Equal(t, "caffee", result.Label)
}

func TestClassify_NilFrame(t *testing.T) {
	path := writeTestModel(t, []string{"caffee", "water", "empty"}, []float32{2, 0, -2})
	a := NewAdapter()
	require.NoError(t, a.Load(path))

	_, err := a.Classify(nil)
	require.ErrorIs(t, err, ErrFrameNotReady)

	_, err = a.Classify(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.ErrorIs(t, err, ErrFrameNotReady)
}

func TestClassify_RepeatedCallsAreStable(t *testing.T) {
	path := writeTestModel(t, []string{"caffee", "water", "empty"}, []float32{0, 3, -1})
	a := NewAdapter()
	require.NoError(t, a.Load(path))

	for i := 0; i < 25; i++ {
		result, err := a.Classify(testFrame())
		require.NoError(t, err)
		assert.Equal(t, "water", result.Label)
	}
}
