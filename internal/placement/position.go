package placement

import "math"

// Canvas dimensions in pixels.
const (
	PreviewWidth   = 400
	PreviewHeight  = 300
	TemplateWidth  = 800
	TemplateHeight = 600
	CardWidth      = 74
	CardHeight     = 124
)

// CardDiagonal is the card's hypotenuse, the side length of the square a
// rotated card needs to stay unclipped.
var CardDiagonal = math.Hypot(CardWidth, CardHeight)

// Position is an immutable card placement. Callers replace a Position
// wholesale rather than editing its fields.
type Position struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// At builds a Position from explicit values without sampling or clamping.
func At(x, y, rotation float64) Position {
	return Position{X: x, Y: y, Rotation: rotation}
}

// PreviewX returns the horizontal offset from the preview canvas center.
func (p Position) PreviewX() int {
	return int(math.Floor(p.X*PreviewWidth - PreviewWidth/2))
}

// PreviewY returns the vertical offset from the preview canvas center.
func (p Position) PreviewY() int {
	return int(math.Floor(p.Y*PreviewHeight - PreviewHeight/2))
}

// PreviewRotation returns the rotation used by the preview canvas.
func (p Position) PreviewRotation() float64 {
	return p.Rotation
}

// TemplateX returns the overlay x coordinate on the template canvas.
func (p Position) TemplateX() int {
	return int(math.Floor(p.X*TemplateWidth - (CardDiagonal-CardWidth)/2))
}

// TemplateY returns the overlay y coordinate on the template canvas.
func (p Position) TemplateY() int {
	return int(math.Floor(p.Y*TemplateHeight - (CardDiagonal-CardHeight)/2))
}

// TemplateRotation returns the rotation applied when compositing.
func (p Position) TemplateRotation() float64 {
	return p.Rotation
}
