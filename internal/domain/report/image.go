package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"

	"github.com/hotelops/roomboard/pkg/compdf"
)

// cropPadding is the white margin kept around the detected content box
// when trimming the rendered page.
const cropPadding = 20

// Renderer turns a projected spreadsheet into a shareable PNG. The
// sheet is converted to PDF by the ComPDF service, the first page is
// rasterized, and the surrounding whitespace is cropped off.
type Renderer struct {
	converter *compdf.Client
	dpi       int
	logger    *slog.Logger
}

func NewRenderer(converter *compdf.Client, dpi int, logger *slog.Logger) *Renderer {
	return &Renderer{converter: converter, dpi: dpi, logger: logger}
}

// Render converts the spreadsheet at xlsxPath and writes the cropped
// first page as PNG to outPath.
func (r *Renderer) Render(ctx context.Context, xlsxPath, outPath string) error {
	pdfBytes, err := r.converter.OfficeToPDF(ctx, xlsxPath)
	if err != nil {
		return fmt.Errorf("failed to convert sheet to pdf: %w", err)
	}

	tmp, err := os.CreateTemp("", "roomboard-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp pdf: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(pdfBytes); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp pdf: %w", err)
	}
	tmp.Close()

	img, err := r.renderFirstPage(tmp.Name())
	if err != nil {
		return err
	}

	cropped := cropWhitespace(img, cropPadding)

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write png to %s: %w", outPath, err)
	}

	r.logger.Info("rendered sheet image", "out", outPath, "dpi", r.dpi,
		"width", cropped.Bounds().Dx(), "height", cropped.Bounds().Dy())
	return nil
}

func (r *Renderer) renderFirstPage(pdfPath string) (image.Image, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open rendered pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("rendered pdf has no pages")
	}

	img, err := doc.ImageDPI(0, float64(r.dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize page: %w", err)
	}
	return img, nil
}

// cropWhitespace trims near-white margins, leaving padding pixels of
// margin around the content. Pages with no content come back unchanged.
func cropWhitespace(img image.Image, padding int) image.Image {
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X, bounds.Min.Y

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if isWhite(img.At(x, y)) {
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

	if minX > maxX || minY > maxY {
		return img
	}

	crop := image.Rect(minX-padding, minY-padding, maxX+padding+1, maxY+padding+1).Intersect(bounds)
	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	for y := 0; y < crop.Dy(); y++ {
		for x := 0; x < crop.Dx(); x++ {
			out.Set(x, y, img.At(crop.Min.X+x, crop.Min.Y+y))
		}
	}
	return out
}

// isWhite treats anything brighter than roughly 97% as background.
func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	const threshold = 0xF800
	return r >= threshold && g >= threshold && b >= threshold
}
