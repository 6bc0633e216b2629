// Package main runs a pose-match session over a file-backed video source,
// scoring each frame against a reference image.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/posematch/estimate"
	"go.viam.com/posematch/estimate/fake"
	"go.viam.com/posematch/estimate/tflitepose"
	"go.viam.com/posematch/match"
	"go.viam.com/posematch/pose"
	"go.viam.com/posematch/render"
	"go.viam.com/posematch/videosource"
)

var logger = golog.NewDevelopmentLogger("posematchd")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	var (
		referencePath = fs.String("reference", "", "path to the reference pose image (required)")
		sourcePath    = fs.String("source", "", "path to the image file serving frames (required)")
		modelPath     = fs.String("model", "", "path to a tflite pose model; a canned estimator is used when empty")
		mode          = fs.String("mode", string(estimate.ModeSingle), "estimation mode: single or multi")
		flip          = fs.Bool("flip", false, "mirror keypoints horizontally")
		outDir        = fs.String("out", "", "directory for annotated frames; scores are only logged when empty")
		frameRate     = fs.Float64("fps", match.DefaultFrameRate, "frame loop ticks per second")
		tolerance     = fs.Float64("tolerance", match.DefaultToleranceDeg, "scoring tolerance window in degrees")
	)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *referencePath == "" || *sourcePath == "" {
		fs.Usage()
		return errors.New("both -reference and -source are required")
	}

	cfg := match.Config{
		ReferenceImage: *referencePath,
		ToleranceDeg:   *tolerance,
		FrameRate:      *frameRate,
		Estimation: estimate.Config{
			Mode:           estimate.Mode(*mode),
			FlipHorizontal: *flip,
		},
	}

	// a source that cannot serve a first frame is fatal to the capture
	// flow and must surface to the caller
	source := &videosource.FileSource{Path: *sourcePath}
	if _, release, err := source.Next(ctx); err != nil {
		return errors.Wrap(err, "video capture unavailable")
	} else {
		release()
	}

	var estimator estimate.Estimator
	if *modelPath != "" {
		var err error
		estimator, err = tflitepose.New(*modelPath, cfg.Estimation, logger)
		if err != nil {
			return err
		}
	} else {
		logger.Info("no model configured; using a canned estimator")
		estimator = &fake.Estimator{Poses: []pose.Pose{demoPose()}}
	}

	display, err := buildDisplay(cfg.Estimation.WithDefaults().MinPartConfidence, *outDir, logger)
	if err != nil {
		return multierr.Combine(err, estimator.Close(ctx))
	}

	session, err := match.NewSession(cfg, source, estimator, videosource.Loader(), display, match.NewStatusLogger(logger), logger)
	if err != nil {
		return multierr.Combine(err, estimator.Close(ctx))
	}
	if err := session.Start(ctx); err != nil {
		return multierr.Combine(err, estimator.Close(ctx))
	}
	logger.Infow("session running", "id", session.ID())

	<-ctx.Done()
	closeCtx := context.Background()
	return multierr.Combine(
		session.Close(closeCtx),
		estimator.Close(closeCtx),
		source.Close(),
	)
}

func buildDisplay(minPartConfidence float64, outDir string, logger golog.Logger) (match.Display, error) {
	if outDir == "" {
		return &logDisplay{logger: logger}, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	var n int
	return render.NewOverlay(minPartConfidence, func(img image.Image) error {
		n++
		f, err := os.Create(filepath.Join(outDir, fmt.Sprintf("frame-%06d.png", n)))
		if err != nil {
			return err
		}
		defer f.Close()
		return png.Encode(f, img)
	})
}

// logDisplay reports fresh scores through the logger instead of drawing.
type logDisplay struct {
	logger golog.Logger
}

func (d *logDisplay) Render(ctx context.Context, res match.FrameResult) error {
	for i, sub := range res.Subjects {
		if sub.Scored {
			d.logger.Infow("subject scored", "subject", i, "score", sub.Score)
		}
	}
	return nil
}

// demoPose is what the canned estimator reports for every frame: a right
// elbow bent at ninety degrees.
func demoPose() pose.Pose {
	return pose.Pose{
		Keypoints: []pose.Keypoint{
			{Name: pose.RightShoulder, Position: r2.Point{X: 320, Y: 120}, Score: 0.9},
			{Name: pose.RightElbow, Position: r2.Point{X: 320, Y: 220}, Score: 0.9},
			{Name: pose.RightWrist, Position: r2.Point{X: 420, Y: 220}, Score: 0.9},
		},
		Score: 0.9,
	}
}
