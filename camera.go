package rowan

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera produces the renderer's view matrix from a world position, zoom,
// and rotation. Call Update each frame, then Apply to push the view; the
// renderer only re-collects when the matrix actually changed.
type Camera struct {
	// X and Y are the world-space point the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1 = no zoom, >1 = zoom in).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	Bounds        Rect

	followTarget  *Node
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	scrollTween *scrollAnim
}

// NewCamera creates a camera with default values and the given viewport.
func NewCamera(viewport Rect) *Camera {
	return &Camera{Zoom: 1, Viewport: viewport}
}

// Follow makes the camera track a node with the given offset and lerp
// factor. A lerp of 1 snaps immediately; lower values smooth the motion.
func (c *Camera) Follow(node *Node, offsetX, offsetY, lerp float64) {
	c.followTarget = node
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera to the given world position.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// Update advances follow, scroll animation, and bounds clamping.
func (c *Camera) Update(dt float32) {
	if t := c.followTarget; t != nil && !t.IsDestroyed() {
		tx := t.worldMatrix[4] + c.followOffsetX
		ty := t.worldMatrix[5] + c.followOffsetY
		c.X += (tx - c.X) * c.followLerp
		c.Y += (ty - c.Y) * c.followLerp
	}

	if st := c.scrollTween; st != nil {
		if !st.doneX {
			val, done := st.tweenX.Update(dt)
			c.X = float64(val)
			st.doneX = done
		}
		if !st.doneY {
			val, done := st.tweenY.Update(dt)
			c.Y = float64(val)
			st.doneY = done
		}
		if st.doneX && st.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts the position so the visible area stays in Bounds.
// Bounds smaller than the visible area center the camera instead.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
}

// View returns the current view matrix:
// Translate(viewport center) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y).
func (c *Camera) View() Matrix {
	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	m := MatrixTranslate(cx, cy)
	m = m.Mul(MatrixScale(c.Zoom, c.Zoom))
	m = m.Mul(MatrixRotate(-c.Rotation))
	return m.Mul(MatrixTranslate(-c.X, -c.Y))
}

// Apply pushes the camera's view matrix onto the renderer. A no-op when the
// matrix is unchanged, so calling every frame is cheap.
func (c *Camera) Apply(r *Renderer) {
	r.SetView(c.View())
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.View().Apply(wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return c.View().Invert().Apply(sx, sy)
}

// VisibleBounds returns the axis-aligned bounds of the visible area in world
// space.
func (c *Camera) VisibleBounds() Rect {
	inv := c.View().Invert()

	vx := c.Viewport.X
	vy := c.Viewport.Y
	vr := vx + c.Viewport.Width
	vb := vy + c.Viewport.Height

	x0, y0 := inv.Apply(vx, vy)
	x1, y1 := inv.Apply(vr, vy)
	x2, y2 := inv.Apply(vr, vb)
	x3, y3 := inv.Apply(vx, vb)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
