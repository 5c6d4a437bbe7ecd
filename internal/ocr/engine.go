package ocr

import "context"

// Result is the outcome of recognizing one page image.
type Result struct {
	// Text is the recognized text in reading order.
	Text string

	// TokenConfidences holds per-token scores on the engine's native 0-100
	// scale, with -1 marking layout boxes that carry no text. Engines
	// without token-level scores leave it nil.
	TokenConfidences []float64

	// Confidence is the pooled page confidence on the 0..1 scale.
	Confidence float64
}

// Engine recognizes text in a rendered page image.
type Engine interface {
	// Recognize runs text recognition on an encoded page image.
	Recognize(ctx context.Context, image []byte) (*Result, error)

	// Name identifies the engine in logs and record metadata.
	Name() string
}

// AverageTokenConfidence pools per-token scores into a single confidence on
// the 0..1 scale. The -1 sentinel entries are skipped; an empty pool scores
// zero.
func AverageTokenConfidence(tokens []float64) float64 {
	sum, n := 0.0, 0
	for _, c := range tokens {
		if c == -1 {
			continue
		}
		sum += c
		n++
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n) / 100
}
