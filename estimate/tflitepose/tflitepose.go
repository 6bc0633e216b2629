// Package tflitepose runs pose estimation with a TensorFlow Lite model.
// It understands the MoveNet-family output layouts: single-pose
// [1,1,17,3] and multi-pose [1,N,56].
package tflitepose

import (
	"context"
	"image"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	tflite "github.com/mattn/go-tflite"
	"github.com/pkg/errors"

	"go.viam.com/posematch/estimate"
	"go.viam.com/posematch/pose"
)

// Estimator wraps a tflite interpreter. The interpreter is not reentrant,
// so calls are serialized.
type Estimator struct {
	mu          sync.Mutex
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	cfg         estimate.Config
	inputW      int
	inputH      int
	logger      golog.Logger
	closed      bool
}

// New loads the model at modelPath and allocates an interpreter for it.
// Everything allocated here is released by Close, or before returning on
// any construction failure.
func New(modelPath string, cfg estimate.Config, logger golog.Logger) (*Estimator, error) {
	model := tflite.NewModelFromFile(modelPath)
	if model == nil {
		return nil, errors.Errorf("failed to load tflite model %q", modelPath)
	}
	options := tflite.NewInterpreterOptions()
	if options == nil {
		model.Delete()
		return nil, errors.New("failed to create interpreter options")
	}
	options.SetNumThread(runtime.NumCPU())
	options.SetErrorReporter(func(msg string, userData interface{}) {
		logger.Warnw("tflite", "msg", msg)
	}, nil)
	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, errors.New("failed to create interpreter")
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, errors.New("failed to allocate tensors")
	}
	input := interpreter.GetInputTensor(0)
	return &Estimator{
		model:       model,
		options:     options,
		interpreter: interpreter,
		cfg:         cfg.WithDefaults(),
		inputH:      input.Dim(1),
		inputW:      input.Dim(2),
		logger:      logger,
	}, nil
}

// EstimatePoses resizes img to the model's input shape, invokes the
// interpreter, and decodes the output tensor back into frame coordinates.
// The input buffer is written and consumed within this call; no
// caller-owned tensor survives it.
func (e *Estimator) EstimatePoses(ctx context.Context, img image.Image) ([]pose.Pose, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.New("estimator is closed")
	}

	input := e.interpreter.GetInputTensor(0)
	if err := e.fillInput(input, img); err != nil {
		return nil, err
	}
	if status := e.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.New("model invocation failed")
	}

	out := e.interpreter.GetOutputTensor(0)
	vals := out.Float32s()
	bounds := img.Bounds()
	frameW, frameH := float64(bounds.Dx()), float64(bounds.Dy())

	switch {
	case len(vals) == singlePoseLen:
		p, err := decodeSinglePose(vals, frameW, frameH)
		if err != nil {
			return nil, err
		}
		return []pose.Pose{p}, nil
	case len(vals) > 0 && len(vals)%multiPoseRowLen == 0:
		return decodeMultiPose(vals, frameW, frameH, e.cfg.ScoreThreshold, e.cfg.MaxDetections)
	default:
		return nil, errors.Errorf("unsupported output tensor length %d", len(vals))
	}
}

func (e *Estimator) fillInput(input *tflite.Tensor, img image.Image) error {
	resized := imaging.Resize(img, e.inputW, e.inputH, imaging.Linear)
	n := e.inputW * e.inputH

	switch input.Type() {
	case tflite.UInt8:
		buf := make([]byte, n*3)
		for i := 0; i < n; i++ {
			buf[i*3+0] = resized.Pix[i*4+0]
			buf[i*3+1] = resized.Pix[i*4+1]
			buf[i*3+2] = resized.Pix[i*4+2]
		}
		if status := input.CopyFromBuffer(buf); status != tflite.OK {
			return errors.New("copying frame into input tensor failed")
		}
	case tflite.Float32:
		buf := make([]float32, n*3)
		for i := 0; i < n; i++ {
			buf[i*3+0] = float32(resized.Pix[i*4+0]) / 255
			buf[i*3+1] = float32(resized.Pix[i*4+1]) / 255
			buf[i*3+2] = float32(resized.Pix[i*4+2]) / 255
		}
		if status := input.CopyFromBuffer(buf); status != tflite.OK {
			return errors.New("copying frame into input tensor failed")
		}
	default:
		return errors.Errorf("unsupported input tensor type %v", input.Type())
	}
	return nil
}

// Close deletes the interpreter, its options, and the model.
func (e *Estimator) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.interpreter.Delete()
	e.options.Delete()
	e.model.Delete()
	return nil
}
