package render

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"InkBoard/internal/geom"
	"InkBoard/internal/ink"
	"InkBoard/internal/state"
)

// Raster is an immediate-mode surface: every change repaints the whole
// frame into an in-memory image.
type Raster struct {
	dc         *gg.Context
	t          Transform
	strokes    []*state.Stroke
	active     []ink.Point
	style      ink.Style
	Background color.Color
}

// NewRaster returns a w×h surface with a white background.
func NewRaster(w, h int) *Raster {
	return &Raster{dc: gg.NewContext(w, h), t: Identity, Background: color.White}
}

func (r *Raster) Name() string { return "raster" }

func (r *Raster) ApplyTransform(t Transform) {
	r.t = t
	r.paint()
}

func (r *Raster) RenderStrokes(strokes []*state.Stroke) {
	r.strokes = strokes
	r.paint()
}

func (r *Raster) SetActiveStroke(points []ink.Point, style ink.Style) {
	r.active, r.style = points, style
	r.paint()
}

// Resize replaces the backing image.
func (r *Raster) Resize(w, h int) {
	r.dc = gg.NewContext(w, h)
	r.paint()
}

// Image returns the last painted frame.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// EncodePNG writes the frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

// SavePNG writes the frame to a PNG file.
func (r *Raster) SavePNG(path string) error { return r.dc.SavePNG(path) }

func (r *Raster) paint() {
	dc := r.dc
	dc.SetColor(r.Background)
	dc.Clear()
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for _, s := range r.strokes {
		r.drawStroke(s.Points, s.Style, s.Shape)
	}
	if len(r.active) > 0 {
		r.drawStroke(r.active, r.style, nil)
	}
}

func (r *Raster) drawStroke(points []ink.Point, style ink.Style, meta *state.ShapeMetadata) {
	dc := r.dc
	pts := project(points, r.t)
	c := strokeColor(style.Color, style.Opacity)

	if meta != nil && meta.HasFill && len(pts) > 2 {
		tracePath(dc, pts)
		dc.ClosePath()
		dc.SetColor(withOpacity(c, meta.FillOpacity))
		dc.Fill()
	}

	dc.SetColor(c)
	if len(pts) == 1 {
		w := strokeWidth(points[0], points[0], style.Width, r.t.Scale)
		dc.DrawCircle(pts[0].X, pts[0].Y, w/2)
		dc.Fill()
		return
	}
	for i := 1; i < len(pts); i++ {
		dc.SetLineWidth(strokeWidth(points[i-1], points[i], style.Width, r.t.Scale))
		dc.DrawLine(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
		dc.Stroke()
	}
}

func tracePath(dc *gg.Context, pts []geom.Point) {
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
}

// ExportPNG writes strokes to w as a w x h image fitted to their bounds.
func ExportPNG(out io.Writer, strokes []*state.Stroke, w, h int) error {
	r := NewRaster(w, h)
	if b, ok := unionBounds(strokes); ok {
		r.ApplyTransform(Fit(b, float64(w), float64(h), 16))
	}
	r.RenderStrokes(strokes)
	return r.EncodePNG(out)
}
