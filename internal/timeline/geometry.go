package timeline

import (
	"fmt"
	"strconv"

	"github.com/rpggio/plantree/internal/domain/dependency"
)

// controlOffset is the horizontal distance of curve control points from their anchors.
const controlOffset = 30.0

// Rect is a positioned bar.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a surface coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is an SVG marker definition shared by all curves of a surface.
type Marker struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	RefX   float64 `json:"ref_x"`
	RefY   float64 `json:"ref_y"`
	Path   string  `json:"path"`
	Fill   string  `json:"fill"`
}

// Arrowhead is the marker drawn at the target end of every curve.
var Arrowhead = Marker{
	ID:     "arrowhead",
	Width:  10,
	Height: 10,
	RefX:   6,
	RefY:   3,
	Path:   "M0,0 L0,6 L6,3 z",
	Fill:   "#424242",
}

// Curve stroke attributes.
const (
	CurveStroke      = "#424242"
	CurveStrokeWidth = 2
)

// Anchors returns the start and end points of a curve between two bars.
// Unknown types anchor like FS.
func Anchors(typ dependency.Type, from, to Rect) (Point, Point) {
	var startX, endX float64
	switch typ {
	case dependency.TypeStartStart:
		startX, endX = from.X, to.X
	case dependency.TypeFinishFinish:
		startX, endX = from.X+from.Width, to.X+to.Width
	case dependency.TypeStartFinish:
		startX, endX = from.X, to.X+to.Width
	default:
		startX, endX = from.X+from.Width, to.X
	}
	return Point{X: startX, Y: from.Y + from.Height/2}, Point{X: endX, Y: to.Y + to.Height/2}
}

// CurvePath returns the cubic path from start to end with control points
// pushed out horizontally from each anchor.
func CurvePath(start, end Point) string {
	return fmt.Sprintf("M%s,%s C%s,%s %s,%s %s,%s",
		num(start.X), num(start.Y),
		num(start.X+controlOffset), num(start.Y),
		num(end.X-controlOffset), num(end.Y),
		num(end.X), num(end.Y),
	)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
