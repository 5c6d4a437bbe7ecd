package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tsvRow builds one tesseract TSV line; structural rows pass conf -1 and an
// empty word.
func tsvRow(level, page, block, par, line, word string, conf, text string) string {
	return strings.Join([]string{level, page, block, par, line, word, "0", "0", "10", "10", conf, text}, "\t")
}

func TestParseTSV(t *testing.T) {
	out := strings.Join([]string{
		"level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext",
		tsvRow("1", "1", "0", "0", "0", "0", "-1", ""),
		tsvRow("5", "1", "1", "1", "1", "1", "96.5", "Consumo"),
		tsvRow("5", "1", "1", "1", "1", "2", "91.0", "total:"),
		tsvRow("5", "1", "1", "1", "2", "1", "88.5", "1.250,5"),
		tsvRow("5", "1", "1", "1", "2", "2", "92.0", "kWh"),
		tsvRow("4", "1", "1", "1", "3", "0", "-1", ""),
		tsvRow("5", "1", "1", "1", "3", "1", "75.0", " "),
	}, "\n")

	text, tokens := parseTSV(out)

	assert.Equal(t, "Consumo total:\n1.250,5 kWh", text)
	require.Len(t, tokens, 4, "structural and whitespace-only rows carry no tokens")
	assert.Equal(t, []float64{96.5, 91.0, 88.5, 92.0}, tokens)
}

func TestParseTSVEmptyOutput(t *testing.T) {
	text, tokens := parseTSV("level\tpage_num\n")
	assert.Empty(t, text)
	assert.Empty(t, tokens)
}

func TestAverageTokenConfidence(t *testing.T) {
	tests := []struct {
		name   string
		tokens []float64
		want   float64
	}{
		{"plain average over 100", []float64{80, 90, 100}, 0.9},
		{"sentinel entries skipped", []float64{-1, 80, -1, 90, 100}, 0.9},
		{"all sentinels", []float64{-1, -1}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AverageTokenConfidence(tt.tokens), 1e-9)
		})
	}
}

func TestIsScanned(t *testing.T) {
	assert.True(t, IsScanned(""))
	assert.True(t, IsScanned("  \n\t "))
	assert.False(t, IsScanned("Factura nº: 123"))
}
