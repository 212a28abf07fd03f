package report

import (
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"
)

type PageSize string

const (
	PageA4     PageSize = "A4"
	PageLetter PageSize = "Letter"
)

type Color struct {
	R, G, B int
}

var (
	black     = Color{0, 0, 0}
	grey      = Color{100, 100, 100}
	logoGrey  = Color{160, 160, 160}
	logoBlue  = Color{0, 160, 255}
	blue      = Color{59, 130, 246}
	green     = Color{34, 197, 94}
	amber     = Color{245, 158, 11}
	red       = Color{239, 68, 68}
	stripe    = Color{245, 245, 245}
	rowStripe = Color{250, 250, 250}
	headerBg  = Color{230, 230, 230}
)

// Style applies to every DrawText until the next SetStyle.
type Style struct {
	Size  float64
	Bold  bool
	Color Color
}

// Document is the drawing surface a report is laid out on. Coordinates are
// millimetres from the top left corner of the current page.
type Document interface {
	SetStyle(st Style)
	DrawText(text string, x, y float64) error
	FillRect(x, y, w, h float64, c Color)
	NewPage()
	SetPage(n int)
	PageCount() int
	PageSize() (w, h float64)
	SplitText(text string, width float64) []string
	Save(path string) error
}

type DocumentFactory func(size PageSize) (Document, error)

type pdfDocument struct {
	pdf *fpdf.Fpdf
}

// NewPDFDocument returns a Document backed by fpdf, with a first page added.
func NewPDFDocument(size PageSize) (Document, error) {
	switch size {
	case PageA4, PageLetter:
	default:
		return nil, fmt.Errorf("unsupported page size %q", size)
	}

	pdf := fpdf.New("P", "mm", string(size), "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, errors.Join(err, errors.New("failed to create pdf document"))
	}
	return &pdfDocument{pdf: pdf}, nil
}

func (d *pdfDocument) SetStyle(st Style) {
	style := ""
	if st.Bold {
		style = "B"
	}
	d.pdf.SetFont("Helvetica", style, st.Size)
	d.pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
}

func (d *pdfDocument) DrawText(text string, x, y float64) error {
	d.pdf.Text(x, y, text)
	if err := d.pdf.Error(); err != nil {
		d.pdf.ClearError()
		return err
	}
	return nil
}

func (d *pdfDocument) FillRect(x, y, w, h float64, c Color) {
	d.pdf.SetFillColor(c.R, c.G, c.B)
	d.pdf.Rect(x, y, w, h, "F")
}

func (d *pdfDocument) NewPage() {
	d.pdf.AddPage()
}

func (d *pdfDocument) SetPage(n int) {
	d.pdf.SetPage(n)
}

func (d *pdfDocument) PageCount() int {
	return d.pdf.PageCount()
}

func (d *pdfDocument) PageSize() (float64, float64) {
	return d.pdf.GetPageSize()
}

func (d *pdfDocument) SplitText(text string, width float64) []string {
	if text == "" {
		return nil
	}
	return d.pdf.SplitText(text, width)
}

func (d *pdfDocument) Save(path string) error {
	return d.pdf.OutputFileAndClose(path)
}
