package classifier

import (
	"context"
	"fmt"

	tflite "github.com/tphakala/go-tflite"

	"github.com/Keithclinton/Counter-Front/internal/errors"
)

// Predict runs one inference on a preprocessed image tensor and returns the
// confidence score in [0,1]. Higher scores mean more likely authentic.
// The context bounds the wait for the inference engine; the engine itself
// cannot be interrupted, so on timeout the interpreter stays locked until the
// in-flight invocation completes.
func (c *Classifier) Predict(ctx context.Context, imageTensor []float32) (float64, error) {
	if !c.Loaded() {
		return 0, errors.New(fmt.Errorf("model not loaded")).
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}

	c.mu.Lock()

	if err := c.fillInputs(imageTensor); err != nil {
		c.mu.Unlock()
		return 0, err
	}

	done := make(chan tflite.Status, 1)
	go func() {
		done <- c.interpreter.Invoke()
	}()

	select {
	case status := <-done:
		if status != tflite.OK {
			c.mu.Unlock()
			return 0, errors.New(fmt.Errorf("tensor invoke failed: %v", status)).
				Component("classifier").
				Category(errors.CategoryInference).
				Build()
		}
	case <-ctx.Done():
		// Release the interpreter only after the engine finishes.
		go func() {
			<-done
			c.mu.Unlock()
		}()
		return 0, errors.New(ctx.Err()).
			Component("classifier").
			Category(errors.CategoryTimeout).
			Build()
	}

	outputTensor := c.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		c.mu.Unlock()
		return 0, errors.New(fmt.Errorf("cannot get output tensor")).
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	outputs := outputTensor.Float32s()
	if len(outputs) == 0 {
		c.mu.Unlock()
		return 0, errors.New(fmt.Errorf("empty output tensor")).
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	score := clampScore(float64(outputs[0]))
	c.mu.Unlock()

	return score, nil
}

// fillInputs copies the image tensor and a fresh noise vector into the
// interpreter's input tensors. Inputs are matched by rank: the 4-D tensor is
// the image, the 2-D tensor is the pseudo-negative vector.
func (c *Classifier) fillInputs(imageTensor []float32) error {
	imageFilled := false

	for i := 0; i < c.interpreter.GetInputTensorCount(); i++ {
		input := c.interpreter.GetInputTensor(i)
		if input == nil {
			return errors.New(fmt.Errorf("cannot get input tensor %d", i)).
				Component("classifier").
				Category(errors.CategoryInference).
				Build()
		}

		switch input.NumDims() {
		case 2:
			copy(input.Float32s(), noiseVector(c.Settings.Model.LatentDim, c.Settings.Model.Sigma))
		default:
			dst := input.Float32s()
			if len(dst) != len(imageTensor) {
				return errors.New(fmt.Errorf("image tensor size mismatch: model wants %d values, got %d", len(dst), len(imageTensor))).
					Component("classifier").
					Category(errors.CategoryInference).
					Context("input_index", i).
					Build()
			}
			copy(dst, imageTensor)
			imageFilled = true
		}
	}

	if !imageFilled {
		return errors.New(fmt.Errorf("model has no image input tensor")).
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}
	return nil
}
