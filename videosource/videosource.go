// Package videosource provides frame sources backed by static images and
// files, for sessions that do not capture from live hardware.
package videosource

import (
	"context"
	"image"
	"os"

	"github.com/pkg/errors"

	// register the formats a reference image or frame file may come in
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/lmittmann/ppm"

	"go.viam.com/posematch/match"
)

// StaticSource serves the same image for every frame.
type StaticSource struct {
	Img image.Image
}

// Next returns the underlying image.
func (ss *StaticSource) Next(ctx context.Context) (image.Image, func(), error) {
	if ss.Img == nil {
		return nil, nil, errors.New("static source has no image")
	}
	return ss.Img, func() {}, nil
}

// Close does nothing.
func (ss *StaticSource) Close() error {
	return nil
}

// FileSource re-reads a path on every frame, picking up changes on disk.
type FileSource struct {
	Path string
}

// Next decodes the file at the source's path.
func (fs *FileSource) Next(ctx context.Context) (image.Image, func(), error) {
	img, err := ReadImageFromFile(fs.Path)
	if err != nil {
		return nil, nil, err
	}
	return img, func() {}, nil
}

// Close does nothing.
func (fs *FileSource) Close() error {
	return nil
}

// ReadImageFromFile decodes the image at path.
func ReadImageFromFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %q", path)
	}
	return img, nil
}

// Loader returns a match.ImageLoader that resolves reference identifiers
// as filesystem paths.
func Loader() match.ImageLoader {
	return func(ctx context.Context, ref string) (image.Image, func(), error) {
		img, err := ReadImageFromFile(ref)
		if err != nil {
			return nil, nil, err
		}
		return img, func() {}, nil
	}
}
