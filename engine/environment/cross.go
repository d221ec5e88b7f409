package environment

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// ErrInvalidCross is returned when an image cannot be split into a 4x3 cube cross.
var ErrInvalidCross = errors.New("image is not a 4x3 cubemap cross")

// Face identifies one cube face. The values are the face order of the GPU record.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// crossTiles is the tile of each face in a horizontal cross:
//
//	[   ][ +Y][   ][   ]
//	[-X ][ +Z][ +X][ -Z]
//	[   ][ -Y][   ][   ]
var crossTiles = [6]image.Point{
	FacePosX: {2, 1},
	FaceNegX: {0, 1},
	FacePosY: {1, 0},
	FaceNegY: {1, 2},
	FacePosZ: {1, 1},
	FaceNegZ: {3, 1},
}

// placeholderColor is the neutral sky used before any map is loaded.
var placeholderColor = color.RGBA{R: 128, G: 128, B: 255, A: 255}

// Faces holds the six square faces of a cube map as RGBA8 images with origin (0, 0).
type Faces struct {
	Size  int
	Faces [6]*image.RGBA
}

// Face returns one face image.
//
// Parameters:
//   - f: the face to return
//
// Returns:
//   - *image.RGBA: the face, Size x Size texels
func (fs *Faces) Face(f Face) *image.RGBA {
	return fs.Faces[f]
}

// Validate checks that every face is present and Size x Size.
//
// Returns:
//   - error: a description of the first malformed face
func (fs *Faces) Validate() error {
	if fs == nil || fs.Size <= 0 {
		return errors.New("cube map has no faces")
	}
	for i, img := range fs.Faces {
		if img == nil {
			return fmt.Errorf("cube map face %d is missing", i)
		}
		if b := img.Bounds(); b.Min != (image.Point{}) || b.Dx() != fs.Size || b.Dy() != fs.Size {
			return fmt.Errorf("cube map face %d is %v, want %dx%d at the origin", i, b, fs.Size, fs.Size)
		}
	}
	return nil
}

// Placeholder returns a 1x1 cube map of a neutral sky color.
//
// Returns:
//   - *Faces: the placeholder faces
func Placeholder() *Faces {
	out := &Faces{Size: 1}
	for i := range out.Faces {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, placeholderColor)
		out.Faces[i] = img
	}
	return out
}

// DecodeCross decodes a PNG, JPEG, BMP or TIFF horizontal cross and cuts it into faces.
// Faces larger than maxFaceSize are downsampled bilinearly; 0 keeps the source size.
//
// Parameters:
//   - r: the encoded image
//   - maxFaceSize: the largest face edge to keep, or 0 for no limit
//
// Returns:
//   - *Faces: the six faces
//   - error: a decode error or ErrInvalidCross
func DecodeCross(r io.Reader, maxFaceSize int) (*Faces, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cube map image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || w%4 != 0 || h%3 != 0 || w/4 != h/3 {
		return nil, fmt.Errorf("%w: %s image is %dx%d", ErrInvalidCross, format, w, h)
	}

	tile := w / 4
	size := tile
	if maxFaceSize > 0 && size > maxFaceSize {
		size = maxFaceSize
	}

	out := &Faces{Size: size}
	for f, t := range crossTiles {
		sr := image.Rect(t.X*tile, t.Y*tile, (t.X+1)*tile, (t.Y+1)*tile).Add(b.Min)
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		if size == tile {
			draw.Copy(dst, image.Point{}, img, sr, draw.Src, nil)
		} else {
			draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, sr, draw.Src, nil)
		}
		out.Faces[f] = dst
	}
	return out, nil
}

// LoadCross opens path and decodes it with DecodeCross.
//
// Parameters:
//   - path: the image file
//   - maxFaceSize: the largest face edge to keep, or 0 for no limit
//
// Returns:
//   - *Faces: the six faces
//   - error: an open, decode or layout error
func LoadCross(path string, maxFaceSize int) (*Faces, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cube map %q: %w", path, err)
	}
	defer f.Close()

	faces, err := DecodeCross(f, maxFaceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load cube map %q: %w", path, err)
	}
	return faces, nil
}
