package ocr

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayer reads the native text layer of a PDF, concatenating all pages.
// The underlying reader panics on some malformed files, so extraction is
// fenced with a recover and reported as an unreadable document instead.
func TextLayer(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = NewExtractError("TextLayer", ErrUnreadablePDF, fmt.Sprintf("reader panic: %v", r))
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, NewExtractError("TextLayer", ErrUnreadablePDF, err.Error())
	}
	defer f.Close()

	pages = reader.NumPage()

	var content strings.Builder
	for pageNum := 1; pageNum <= pages; pageNum++ {
		p := reader.Page(pageNum)
		if p.V.IsNull() {
			continue
		}
		pageText, perr := p.GetPlainText(nil)
		if perr != nil {
			// A page without decodable text ends up on the OCR path via
			// the density check; no reason to fail the document here.
			continue
		}
		content.WriteString(pageText)
	}

	return content.String(), pages, nil
}

// IsScanned reports whether the document needs OCR: an image-only PDF
// yields an empty text layer.
func IsScanned(text string) bool {
	return strings.TrimSpace(text) == ""
}
