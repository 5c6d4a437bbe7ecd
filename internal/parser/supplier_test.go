package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/getluma/emissions-extraction-service/internal/parser"
)

func TestDetectSupplier(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"exact keyword", "Factura de Iberdrola Clientes S.A.U.", "Iberdrola", true},
		{"case insensitive", "FACTURA ENDESA ENERGÍA", "Endesa", true},
		{"naturgy alias", "Comercializadora Gas Natural Servicios", "Naturgy", true},
		{"fuel card", "REPSOL Estación de Servicio", "Repsol", true},
		{"freight", "Envío gestionado por SEUR", "SEUR", true},
		{"no known supplier", "Factura de Luz del Sur", "", false},
		{"empty text", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parser.DetectSupplier(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Detection walks the keyword table in declaration order, so a document
// mentioning several suppliers resolves to the earliest table entry, not
// the first occurrence in the text.
func TestDetectSupplierOrderDependent(t *testing.T) {
	got, ok := parser.DetectSupplier("Cambio de comercializadora: de Endesa a Iberdrola")
	assert.True(t, ok)
	assert.Equal(t, "Iberdrola", got, "Iberdrola precedes Endesa in the keyword table")

	got, ok = parser.DetectSupplier("Comparativa Naturgy / Endesa")
	assert.True(t, ok)
	assert.Equal(t, "Endesa", got, "Endesa precedes Naturgy in the keyword table")
}
