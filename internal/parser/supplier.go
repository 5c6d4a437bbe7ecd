package parser

import "strings"

// Suppliers with a dedicated field extractor.
const (
	supplierIberdrola = "Iberdrola"
	supplierEndesa    = "Endesa"
	supplierNaturgy   = "Naturgy"
)

// supplierKeywords maps known Spanish utility, fuel and freight companies to
// the keywords that identify them in document text. Order matters: detection
// walks the table top to bottom and the first keyword hit wins, so a document
// mentioning both Iberdrola and Endesa resolves to Iberdrola.
var supplierKeywords = []struct {
	name     string
	keywords []string
}{
	{supplierIberdrola, []string{"iberdrola"}},
	{supplierEndesa, []string{"endesa"}},
	{supplierNaturgy, []string{"naturgy", "gas natural"}},
	{"EDP", []string{"edp"}},
	{"TotalEnergies", []string{"totalenergies"}},
	{"Repsol", []string{"repsol"}},
	{"Cepsa", []string{"cepsa"}},
	{"Galp", []string{"galp"}},
	{"Shell", []string{"shell"}},
	{"BP", []string{"bp"}},
	{"DHL", []string{"dhl"}},
	{"SEUR", []string{"seur"}},
	{"MRW", []string{"mrw"}},
}

// fuelSuppliers are routed to the fuel-card parser.
var fuelSuppliers = map[string]bool{
	"Repsol": true,
	"Cepsa":  true,
	"Galp":   true,
	"Shell":  true,
	"BP":     true,
}

// DetectSupplier scans document text for known supplier keywords,
// case-insensitively. It returns ok=false when no keyword matches.
func DetectSupplier(text string) (string, bool) {
	textLower := strings.ToLower(text)

	for _, entry := range supplierKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(textLower, keyword) {
				return entry.name, true
			}
		}
	}
	return "", false
}
