package shape

import (
	"math"

	"InkBoard/internal/geom"
)

// FitLine joins the first and last point and scores the fit with R² of the
// perpendicular residuals against the total spread around the centroid.
func FitLine(pts []geom.Point) (Line, float64) {
	if len(pts) == 0 {
		return Line{}, 0
	}
	l := Line{Start: pts[0], End: pts[len(pts)-1]}
	if l.Start.Distance(l.End) == 0 {
		return l, 0
	}
	c := geom.Centroid(pts)
	var ssRes, ssTot float64
	for _, p := range pts {
		d := geom.LineDistance(p, l.Start, l.End)
		ssRes += d * d
		v := p.Sub(c)
		ssTot += v.Dot(v)
	}
	if ssRes == 0 {
		return l, 1
	}
	if ssTot == 0 {
		return l, 0
	}
	return l, geom.Clamp(1-ssRes/ssTot, 0, 1)
}

// FitCircle uses the centroid and the mean radius. Quality falls with the
// normalized radius variance. Fewer than three points yield a zero-radius
// circle of quality 0.
func FitCircle(pts []geom.Point) (Circle, float64) {
	c := geom.Centroid(pts)
	if len(pts) < 3 {
		return Circle{Center: c}, 0
	}
	mean, nrv := radialSpread(pts, c)
	return Circle{Center: c, Radius: mean}, radialQuality(mean, nrv)
}

// FitEllipse derives axes and rotation from the covariance eigenvectors.
// Quality is the circle quality of the points mapped into the ellipse's unit
// frame. The returned aspect is RadiusX/RadiusY (RadiusX is the major axis).
func FitEllipse(pts []geom.Point) (Ellipse, float64, float64) {
	c := geom.Centroid(pts)
	if len(pts) < 3 {
		return Ellipse{Center: c}, 0, 0
	}
	var sxx, syy, sxy float64
	for _, p := range pts {
		d := p.Sub(c)
		sxx += d.X * d.X
		syy += d.Y * d.Y
		sxy += d.X * d.Y
	}
	n := float64(len(pts))
	sxx, syy, sxy = sxx/n, syy/n, sxy/n

	half := (sxx + syy) / 2
	disc := math.Sqrt((sxx-syy)*(sxx-syy)/4 + sxy*sxy)
	l1, l2 := half+disc, math.Max(half-disc, 0)
	e := Ellipse{
		Center:   c,
		RadiusX:  math.Sqrt(2 * l1),
		RadiusY:  math.Sqrt(2 * l2),
		Rotation: 0.5 * math.Atan2(2*sxy, sxx-syy),
	}
	if e.RadiusY == 0 {
		return e, 0, math.Inf(1)
	}
	aspect := e.RadiusX / e.RadiusY

	cos, sin := math.Cos(-e.Rotation), math.Sin(-e.Rotation)
	unit := make([]geom.Point, len(pts))
	for i, p := range pts {
		d := p.Sub(c)
		unit[i] = geom.Point{
			X: (d.X*cos - d.Y*sin) / e.RadiusX,
			Y: (d.X*sin + d.Y*cos) / e.RadiusY,
		}
	}
	mean, nrv := radialSpread(unit, geom.Point{})
	return e, radialQuality(mean, nrv), aspect
}

// FitRectangle takes the axis-aligned bounding box. Quality is one minus the
// mean distance from each box corner to its nearest sample, relative to the
// box's largest dimension.
func FitRectangle(pts []geom.Point) (Rectangle, float64) {
	b := geom.Bounds(pts)
	r := Rectangle{TopLeft: b.Min(), Width: b.Width, Height: b.Height}
	maxDim := math.Max(b.Width, b.Height)
	if len(pts) == 0 || maxDim == 0 {
		return r, 0
	}
	var total float64
	for _, corner := range b.Corners() {
		nearest := math.Inf(1)
		for _, p := range pts {
			if d := corner.Distance(p); d < nearest {
				nearest = d
			}
		}
		total += nearest
	}
	return r, math.Max(0, 1-(total/4)/maxDim)
}

func radialSpread(pts []geom.Point, c geom.Point) (mean, normalizedVariance float64) {
	n := float64(len(pts))
	for _, p := range pts {
		mean += p.Distance(c)
	}
	mean /= n
	if mean == 0 {
		return 0, 0
	}
	var v float64
	for _, p := range pts {
		d := p.Distance(c) - mean
		v += d * d
	}
	return mean, (v / n) / (mean * mean)
}

func radialQuality(mean, nrv float64) float64 {
	if mean == 0 {
		return 0
	}
	return math.Max(0, 1-10*nrv)
}
