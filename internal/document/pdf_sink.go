package document

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/temirov/repo2doc/internal/types"
)

const (
	pdfOrientation   = "P"
	pdfUnit          = "pt"
	pdfPageSize      = "Letter"
	pdfMargin        = 72.0
	pointsPerInch    = 72.0
	headingFontName  = "Helvetica"
	headingFontStyle = "B"
	bodyFontName     = "Courier"
	titleFontSize    = 24.0
	titleSpaceAfter  = 30.0
	headingFontSize  = 16.0
	headingLeading   = 19.2
	headingSpacing   = 12.0
	bodyFontSize     = 10.0
	courierAdvance   = 0.6
	bodyLeading      = 12.0
	bodySpacing      = 6.0
	pdfCreator       = "repo2doc"

	errorWritePDFFormat = "write pdf document %s: %w"
)

type pdfBlockKind int

const (
	pdfBlockTitle pdfBlockKind = iota
	pdfBlockStructure
	pdfBlockFile
)

type pdfBlock struct {
	kind    pdfBlockKind
	heading string
	body    string
}

// The core fonts only cover cp1252. Box-drawing glyphs common in source trees and
// comments get ASCII stand-ins; other runes outside cp1252 render as ".".
var boxDrawingReplacer = strings.NewReplacer(
	"─", "-", "━", "-", "═", "=",
	"│", "|", "┃", "|", "║", "|",
	"├", "|", "┤", "|", "┬", "+", "┴", "+", "┼", "+",
	"┌", "+", "┐", "+", "└", "+", "┘", "+",
	"╭", "+", "╮", "+", "╰", "+", "╯", "+",
)

// PDFSink accumulates blocks in memory and lays the paginated document out once on Close.
type PDFSink struct {
	outputPath string
	columns    int
	title      string
	blocks     []pdfBlock
}

// NewPDFSink prepares a sink writing to outputPath. Bodies are set in a monospaced
// size at which columns characters fit the text width, so lines already wrapped to
// that width are not broken again. columns <= 0 keeps the default size.
func NewPDFSink(outputPath string, columns int) *PDFSink {
	return &PDFSink{outputPath: outputPath, columns: columns}
}

// newPDFDocument returns a Letter document with the sink's margins.
func newPDFDocument() *fpdf.Fpdf {
	document := fpdf.New(pdfOrientation, pdfUnit, pdfPageSize, "")
	document.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	document.SetAutoPageBreak(true, pdfMargin)
	document.SetCellMargin(0)
	return document
}

// bodyFontSizeFor returns the largest body size, capped at bodyFontSize, at which
// columns Courier glyphs fit textWidth points.
func bodyFontSizeFor(columns int, textWidth float64) float64 {
	if columns <= 0 {
		return bodyFontSize
	}
	return min(bodyFontSize, textWidth/(float64(columns)*courierAdvance))
}

// pdfText maps text onto the core font encoding.
func pdfText(translate func(string) string, text string) string {
	return translate(boxDrawingReplacer.Replace(text))
}

// WriteTitle implements Sink.
func (sink *PDFSink) WriteTitle(repositoryName string) error {
	sink.title = repositoryName
	sink.blocks = append(sink.blocks, pdfBlock{kind: pdfBlockTitle, heading: repositoryName})
	return nil
}

// WriteStructure implements Sink.
func (sink *PDFSink) WriteStructure(structureTree string) error {
	sink.blocks = append(sink.blocks, pdfBlock{kind: pdfBlockStructure, heading: structureHeading, body: structureTree})
	return nil
}

// WriteFile implements Sink.
func (sink *PDFSink) WriteFile(section types.RenderedFileSection) error {
	sink.blocks = append(sink.blocks, pdfBlock{kind: pdfBlockFile, heading: fileHeadingPrefix + section.RelativePath, body: section.Content})
	return nil
}

// Close renders every block, starting each one on a new page, and writes the file.
func (sink *PDFSink) Close() error {
	document := newPDFDocument()
	document.SetCreator(pdfCreator, true)
	document.SetTitle(sink.title, true)
	translate := document.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := document.GetPageSize()
	bodySize := bodyFontSizeFor(sink.columns, pageWidth-2*pdfMargin)

	for _, block := range sink.blocks {
		document.AddPage()
		if block.kind == pdfBlockTitle {
			document.SetFont(headingFontName, headingFontStyle, titleFontSize)
			document.MultiCell(0, titleFontSize*1.2, pdfText(translate, block.heading), "", "L", false)
			document.Ln(titleSpaceAfter + pointsPerInch/2)
			continue
		}
		document.SetFont(headingFontName, headingFontStyle, headingFontSize)
		document.MultiCell(0, headingLeading, pdfText(translate, block.heading), "", "L", false)
		document.Ln(headingSpacing + pointsPerInch/5)
		document.SetFont(bodyFontName, "", bodySize)
		document.Ln(bodySpacing)
		document.MultiCell(0, bodyLeading, pdfText(translate, block.body), "", "L", false)
	}
	sink.blocks = nil

	if outputError := document.OutputFileAndClose(sink.outputPath); outputError != nil {
		return fmt.Errorf(errorWritePDFFormat, sink.outputPath, outputError)
	}
	return nil
}
