package ocr

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// RenderPages rasterizes up to maxPages pages of a PDF into PNG images for
// OCR. It returns the rendered images and the document's total page count;
// pages beyond the limit are skipped, not failed.
func RenderPages(path string, maxPages, dpi int) ([][]byte, int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, 0, NewExtractError("RenderPages", ErrUnreadablePDF, err.Error())
	}
	defer doc.Close()

	total := doc.NumPage()
	n := total
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	images := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, total, NewExtractError("RenderPages", err, fmt.Sprintf("render page %d", i+1))
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, total, NewExtractError("RenderPages", err, fmt.Sprintf("encode page %d", i+1))
		}
		images = append(images, buf.Bytes())
	}

	return images, total, nil
}
