package classifier

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// topology mirrors the model description file: a JSON document naming the
// input geometry, the label set and the dense layer shapes, next to a binary
// weights file (little-endian float32, per layer: rows*cols weights then cols
// biases).
type topology struct {
	Name  string `json:"name"`
	Input struct {
		Width    int `json:"width"`
		Height   int `json:"height"`
		Channels int `json:"channels"`
	} `json:"input"`
	Labels []string    `json:"labels"`
	Layers []layerShape `json:"layers"`
	// Weights is the file name of the weight shard, relative to the
	// topology file.
	Weights string `json:"weights"`
}

type layerShape struct {
	Activation string `json:"activation"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
}

type denseLayer struct {
	rows, cols int
	relu       bool
	weights    []float32 // row-major, rows*cols
	biases     []float32 // cols
}

// model is a loaded feed-forward classifier: a stack of dense layers ending in
// a softmax over the label set.
type model struct {
	inputW, inputH int
	channels       int
	labels         []string
	layers         []denseLayer
}

func loadModel(path string) (*model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model description: %w", err)
	}

	var topo topology
	if err := json.Unmarshal(raw, &topo); err != nil {
		return nil, fmt.Errorf("failed to parse model description: %w", err)
	}
	if err := validateTopology(&topo); err != nil {
		return nil, err
	}

	weightsPath := filepath.Join(filepath.Dir(path), topo.Weights)
	shard, err := os.ReadFile(weightsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights shard: %w", err)
	}

	m := &model{
		inputW:   topo.Input.Width,
		inputH:   topo.Input.Height,
		channels: topo.Input.Channels,
		labels:   topo.Labels,
	}

	offset := 0
	for i, shape := range topo.Layers {
		layer := denseLayer{
			rows: shape.Rows,
			cols: shape.Cols,
			relu: shape.Activation == "relu",
		}
		layer.weights, offset, err = readFloats(shard, offset, shape.Rows*shape.Cols)
		if err != nil {
			return nil, fmt.Errorf("layer %d weights: %w", i, err)
		}
		layer.biases, offset, err = readFloats(shard, offset, shape.Cols)
		if err != nil {
			return nil, fmt.Errorf("layer %d biases: %w", i, err)
		}
		m.layers = append(m.layers, layer)
	}
	if offset != len(shard) {
		return nil, fmt.Errorf("weights shard has %d trailing bytes", len(shard)-offset)
	}

	return m, nil
}

func validateTopology(topo *topology) error {
	if topo.Input.Width <= 0 || topo.Input.Height <= 0 || topo.Input.Channels <= 0 {
		return fmt.Errorf("invalid input geometry %dx%dx%d",
			topo.Input.Width, topo.Input.Height, topo.Input.Channels)
	}
	// Frames are fed from a 4-byte-per-pixel buffer, so anything past RGBA
	// cannot be filled.
	if topo.Input.Channels > 4 {
		return fmt.Errorf("input declares %d channels, at most 4 are supported", topo.Input.Channels)
	}
	if len(topo.Labels) == 0 {
		return fmt.Errorf("model declares no labels")
	}
	if len(topo.Layers) == 0 {
		return fmt.Errorf("model declares no layers")
	}
	if topo.Weights == "" {
		return fmt.Errorf("model declares no weights file")
	}

	expected := topo.Input.Width * topo.Input.Height * topo.Input.Channels
	for i, layer := range topo.Layers {
		if layer.Rows != expected {
			return fmt.Errorf("layer %d expects %d inputs, previous produces %d", i, layer.Rows, expected)
		}
		if layer.Cols <= 0 {
			return fmt.Errorf("layer %d has invalid width %d", i, layer.Cols)
		}
		expected = layer.Cols
	}
	if expected != len(topo.Labels) {
		return fmt.Errorf("final layer produces %d outputs for %d labels", expected, len(topo.Labels))
	}
	return nil
}

func readFloats(shard []byte, offset, count int) ([]float32, int, error) {
	need := count * 4
	if offset+need > len(shard) {
		return nil, 0, fmt.Errorf("weights shard truncated: need %d bytes at offset %d, have %d",
			need, offset, len(shard)-offset)
	}
	out := make([]float32, count)
	for i := range out {
		bits := binary.LittleEndian.Uint32(shard[offset+i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, offset + need, nil
}

// forward runs the dense stack over the normalized input and writes softmax
// probabilities into out (len(labels)). The scratch slice is reused between
// calls so repeated inference does not grow the heap.
func (m *model) forward(input []float64, scratch []float64, out []float64) {
	cur := input
	for _, layer := range m.layers {
		next := scratch[:layer.cols]
		for c := 0; c < layer.cols; c++ {
			sum := float64(layer.biases[c])
			for r := 0; r < layer.rows; r++ {
				sum += cur[r] * float64(layer.weights[r*layer.cols+c])
			}
			if layer.relu && sum < 0 {
				sum = 0
			}
			next[c] = sum
		}
		// The activations become the next layer's input; input and
		// scratch swap roles from here on.
		copy(input[:layer.cols], next)
		cur = input[:layer.cols]
	}
	softmax(cur[:len(out)], out)
}

func softmax(logits []float64, out []float64) {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
}

// maxScratch returns the widest intermediate activation the model produces.
func (m *model) maxScratch() int {
	max := 0
	for _, layer := range m.layers {
		if layer.cols > max {
			max = layer.cols
		}
	}
	return max
}
