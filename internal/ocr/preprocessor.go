package ocr

import (
	"bytes"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/getluma/emissions-extraction-service/internal/logger"
)

// Preprocessor cleans up rendered page images before OCR. Scanned invoices
// often arrive noisy or low-contrast; a grayscale, normalize and sharpen
// pass through ImageMagick improves recognition on such pages.
type Preprocessor struct {
	log zerolog.Logger
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{log: logger.WithComponent("preprocessor")}
}

// Enhance applies the cleanup pipeline to an encoded page image. It never
// fails: when ImageMagick is missing or errors out, the original image is
// returned unchanged so OCR still runs.
func (p *Preprocessor) Enhance(image []byte) []byte {
	in, err := os.CreateTemp("", "ocr-in-*.png")
	if err != nil {
		return image
	}
	defer os.Remove(in.Name())

	out, err := os.CreateTemp("", "ocr-out-*.png")
	if err != nil {
		in.Close()
		return image
	}
	out.Close()
	defer os.Remove(out.Name())

	if _, err := in.Write(image); err != nil {
		in.Close()
		return image
	}
	if err := in.Close(); err != nil {
		return image
	}

	// Pipeline: cap resolution, grayscale, auto-contrast, light denoise,
	// sharpen text edges.
	args := []string{
		in.Name(),
		"-resize", "2000x2000>",
		"-colorspace", "Gray",
		"-normalize",
		"-contrast-stretch", "2%x1%",
		"-despeckle",
		"-sharpen", "0x1",
		"-unsharp", "0x0.5+0.5+0",
		out.Name(),
	}

	// ImageMagick 7 ships "magick"; fall back to the v6 "convert".
	binary := "magick"
	if _, err := exec.LookPath(binary); err != nil {
		binary = "convert"
	}

	cmd := exec.Command(binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.log.Warn().Err(err).Str("stderr", stderr.String()).Msg("image preprocessing failed, using original")
		return image
	}

	processed, err := os.ReadFile(out.Name())
	if err != nil || len(processed) == 0 {
		return image
	}

	p.log.Debug().Int("original_bytes", len(image)).Int("processed_bytes", len(processed)).Msg("image enhanced")
	return processed
}
