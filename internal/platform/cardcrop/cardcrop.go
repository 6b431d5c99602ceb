// Package cardcrop locates the card region in a rendered page and crops it.
//
// The page background is sampled from the four corners. Every pixel that
// differs from it by more than a tolerance belongs to the foreground, and the
// bounding box of the foreground is taken as the card.
package cardcrop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"

	"github.com/smart-card/smartcard-api/internal/platform/filestore"
)

// DefaultTolerance is the summed per-channel distance, on an 8-bit scale,
// above which a pixel counts as foreground.
const DefaultTolerance = 48

var (
	// ErrNoCard is returned when no foreground region large enough to be a
	// card is found, or when the region already spans the whole page.
	ErrNoCard = errors.New("no card region found")

	// ErrDecode is returned when the input is not a decodable PNG.
	ErrDecode = errors.New("cannot decode image")
)

// Extractor crops card regions out of PNG screenshots.
type Extractor struct {
	logger    *slog.Logger
	tolerance int
}

// New returns an Extractor with DefaultTolerance.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:    logger.With("component", "card_extractor"),
		tolerance: DefaultTolerance,
	}
}

// ExtractCard crops the card found in imagePath and writes it to cardPath.
// Regions smaller than minArea pixels are rejected. With debug set, the
// detected background, bounding box and area are logged at info level. A
// cancelled ctx stops the scan and is returned as is.
func (e *Extractor) ExtractCard(ctx context.Context, imagePath, cardPath string, minArea int, debug bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	img, err := png.Decode(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bg := background(img)
	box, err := e.foregroundBounds(ctx, img, bg)
	if err != nil {
		return err
	}
	area := box.Dx() * box.Dy()

	if debug {
		r, g, b, _ := bg.RGBA()
		e.logger.InfoContext(ctx, "card region scan",
			"image", imagePath,
			"size", img.Bounds().Size().String(),
			"background", fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8),
			"bbox", box.String(),
			"area", area,
			"min_area", minArea)
	}

	switch {
	case box.Empty():
		return fmt.Errorf("%w: page is uniform", ErrNoCard)
	case area < minArea:
		return fmt.Errorf("%w: region area %d below minimum %d", ErrNoCard, area, minArea)
	case box.Eq(img.Bounds()):
		return fmt.Errorf("%w: region spans the whole page", ErrNoCard)
	}

	cropped, err := crop(img, box)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return fmt.Errorf("encode card: %w", err)
	}
	if err := filestore.WriteExclusive(cardPath, &buf); err != nil {
		return fmt.Errorf("write card: %w", err)
	}
	return nil
}

// background returns the most frequent of the four corner colours; ties go
// to the top-left corner.
func background(img image.Image) color.Color {
	b := img.Bounds()
	corners := []color.Color{
		img.At(b.Min.X, b.Min.Y),
		img.At(b.Max.X-1, b.Min.Y),
		img.At(b.Min.X, b.Max.Y-1),
		img.At(b.Max.X-1, b.Max.Y-1),
	}

	best, bestCount := corners[0], 0
	for _, c := range corners {
		count := 0
		for _, other := range corners {
			if distance(c, other) == 0 {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = c, count
		}
	}
	return best
}

func (e *Extractor) foregroundBounds(ctx context.Context, img image.Image, bg color.Color) (image.Rectangle, error) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return image.Rectangle{}, err
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			if distance(img.At(x, y), bg) <= e.tolerance {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}, nil
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), nil
}

// distance is the summed absolute RGB difference on an 8-bit scale.
func distance(a, b color.Color) int {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	return absDiff(ar>>8, br>>8) + absDiff(ag>>8, bg>>8) + absDiff(ab>>8, bb>>8)
}

func absDiff(a, b uint32) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func crop(img image.Image, box image.Rectangle) (image.Image, error) {
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("%w: image type %T cannot be cropped", ErrDecode, img)
	}
	return sub.SubImage(box), nil
}
