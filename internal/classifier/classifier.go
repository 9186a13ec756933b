// Package classifier wraps the pre-trained TFLite counterfeit detection model.
// The model is an opaque artifact loaded once at startup; every prediction
// feeds it the preprocessed image tensor plus a small pseudo-negative noise
// vector that exists only to satisfy the model's input arity.
package classifier

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"sync"

	tflite "github.com/tphakala/go-tflite"

	"github.com/Keithclinton/Counter-Front/internal/conf"
	"github.com/Keithclinton/Counter-Front/internal/cpuspec"
	"github.com/Keithclinton/Counter-Front/internal/errors"
	"github.com/Keithclinton/Counter-Front/internal/logging"
)

// Classifier holds the TFLite interpreter and its configuration.
type Classifier struct {
	interpreter *tflite.Interpreter
	Settings    *conf.Settings
	logger      *slog.Logger

	// The interpreter is not reentrant, all access is serialized.
	mu sync.Mutex
}

// New loads the model file named in settings and prepares an interpreter.
// A load failure is not fatal for the process: the caller keeps running with
// a nil classifier and answers predictions with a model-unavailable error.
func New(settings *conf.Settings) (*Classifier, error) {
	c := &Classifier{
		Settings: settings,
		logger:   logging.ForService("classifier"),
	}

	modelData, err := os.ReadFile(settings.Model.Path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read model file: %w", err)).
			Component("classifier").
			Category(errors.CategoryModelLoad).
			Context("path", settings.Model.Path).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, errors.New(fmt.Errorf("cannot load TensorFlow Lite model")).
			Component("classifier").
			Category(errors.CategoryModelInit).
			Context("path", settings.Model.Path).
			Context("model_size_mb", len(modelData)/1024/1024).
			Build()
	}

	threads := c.determineThreadCount(settings.Model.Threads)

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, userData any) {
		slog.Error("TFLite error", "message", msg)
	}, nil)

	c.interpreter = tflite.NewInterpreter(model, options)
	if c.interpreter == nil {
		return nil, errors.New(fmt.Errorf("cannot create interpreter")).
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := c.interpreter.AllocateTensors(); status != tflite.OK {
		return nil, errors.New(fmt.Errorf("tensor allocation failed")).
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}

	// TFLite keeps its own copy of the model data
	runtime.GC()

	c.logger.Info("Classifier model initialized",
		"path", settings.Model.Path,
		"threads", threads,
		"total_cpus", runtime.NumCPU(),
		"latent_dim", settings.Model.LatentDim)

	return c, nil
}

// Loaded reports whether a usable interpreter is present.
func (c *Classifier) Loaded() bool {
	return c != nil && c.interpreter != nil
}

// determineThreadCount resolves the interpreter thread count from settings,
// falling back to the machine's performance core count.
func (c *Classifier) determineThreadCount(configured int) int {
	if configured > 0 {
		return configured
	}

	spec := cpuspec.GetCPUSpec()
	if threads := spec.GetOptimalThreadCount(); threads > 0 {
		return threads
	}

	return runtime.NumCPU()
}

// noiseVector samples the auxiliary pseudo-negative input from N(0, sigma).
// The noise injects negligible randomness into every prediction; it is kept
// because the model expects two inputs, not because it carries signal.
func noiseVector(dim int, sigma float64) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(rand.NormFloat64() * sigma)
	}
	return vec
}

// clampScore bounds a raw model output to the [0,1] confidence range.
func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
