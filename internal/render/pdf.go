package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"InkBoard/internal/geom"
	"InkBoard/internal/ink"
	"InkBoard/internal/state"
)

// pdfUnit converts surface pixels to millimetres at 96 dpi.
const pdfUnit = 25.4 / 96

// PDF renders strokes into a document, one page per RenderStrokes call.
type PDF struct {
	doc    *gofpdf.Fpdf
	t      Transform
	active []ink.Point
	style  ink.Style
	pageW  float64
	pageH  float64
}

// NewPDF starts an A4 landscape document.
func NewPDF() *PDF {
	doc := gofpdf.New("L", "mm", "A4", "")
	doc.SetLineCapStyle("round")
	doc.SetLineJoinStyle("round")
	w, h := doc.GetPageSize()
	return &PDF{doc: doc, t: Identity, pageW: w / pdfUnit, pageH: h / pdfUnit}
}

func (p *PDF) Name() string { return "pdf" }

func (p *PDF) ApplyTransform(t Transform) { p.t = t }

// PageSize returns the page extent in surface pixels.
func (p *PDF) PageSize() (w, h float64) { return p.pageW, p.pageH }

// RenderStrokes adds a page holding strokes and any active stroke.
func (p *PDF) RenderStrokes(strokes []*state.Stroke) {
	p.doc.AddPage()
	for _, s := range strokes {
		p.drawStroke(s.Points, s.Style, s.Shape)
	}
	if len(p.active) > 0 {
		p.drawStroke(p.active, p.style, nil)
	}
}

// SetActiveStroke records a stroke drawn on top of the next page.
func (p *PDF) SetActiveStroke(points []ink.Point, style ink.Style) {
	p.active, p.style = points, style
}

// Output writes the document.
func (p *PDF) Output(w io.Writer) error {
	if err := p.doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (p *PDF) drawStroke(points []ink.Point, style ink.Style, meta *state.ShapeMetadata) {
	doc := p.doc
	pts := project(points, p.t)
	c := strokeColor(style.Color, 1)
	alpha := style.Opacity
	if alpha == 0 {
		alpha = 1
	}

	if meta != nil && meta.HasFill && len(pts) > 2 {
		doc.SetFillColor(int(c.R), int(c.G), int(c.B))
		doc.SetAlpha(alpha*meta.FillOpacity, "Normal")
		doc.Polygon(toPDF(pts), "F")
	}

	doc.SetAlpha(alpha, "Normal")
	doc.SetDrawColor(int(c.R), int(c.G), int(c.B))
	if len(pts) == 1 {
		doc.SetFillColor(int(c.R), int(c.G), int(c.B))
		r := strokeWidth(points[0], points[0], style.Width, p.t.Scale) / 2
		doc.Circle(pts[0].X*pdfUnit, pts[0].Y*pdfUnit, r*pdfUnit, "F")
		return
	}
	for i := 1; i < len(pts); i++ {
		doc.SetLineWidth(strokeWidth(points[i-1], points[i], style.Width, p.t.Scale) * pdfUnit)
		doc.Line(pts[i-1].X*pdfUnit, pts[i-1].Y*pdfUnit, pts[i].X*pdfUnit, pts[i].Y*pdfUnit)
	}
}

func toPDF(pts []geom.Point) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		out[i] = gofpdf.PointType{X: p.X * pdfUnit, Y: p.Y * pdfUnit}
	}
	return out
}

// ExportPDF writes strokes to w as a single page fitted to their bounds.
func ExportPDF(w io.Writer, strokes []*state.Stroke) error {
	p := NewPDF()
	if b, ok := unionBounds(strokes); ok {
		pw, ph := p.PageSize()
		p.ApplyTransform(Fit(b, pw, ph, 24))
	}
	p.RenderStrokes(strokes)
	return p.Output(w)
}
