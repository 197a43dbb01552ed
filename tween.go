package rowan

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 scalar channels on a Node simultaneously,
// writing through the node's setters so dirty propagation comes for free.
// Call Update(dt) each frame; there is no global animation manager. A group
// whose target is destroyed stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	values [4]float64
	count  int
	target *Node
	apply  func(n *Node, v [4]float64)
	Done   bool
}

// Update advances the group by dt seconds and applies the values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target == nil || g.target.IsDestroyed() {
		g.Done = true
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.apply(g.target, g.values)
	g.Done = allDone
}

// TweenPosition animates the node's position to (toX, toY).
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.X()), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Y()), float32(toY), duration, fn)
	g.apply = func(n *Node, v [4]float64) { n.SetPosition(v[0], v[1]) }
	return g
}

// TweenScale animates the node's scale factors to (toSX, toSY).
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.ScaleX()), float32(toSX), duration, fn)
	g.tweens[1] = gween.New(float32(node.ScaleY()), float32(toSY), duration, fn)
	g.apply = func(n *Node, v [4]float64) { n.SetScale(v[0], v[1]) }
	return g
}

// TweenTint animates all four tint components to the target color.
func TweenTint(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4, target: node}
	from := node.Tint()
	g.tweens[0] = gween.New(float32(from.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(from.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(from.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(from.A), float32(to.A), duration, fn)
	g.apply = func(n *Node, v [4]float64) {
		n.SetTint(Color{R: v[0], G: v[1], B: v[2], A: v[3]})
	}
	return g
}

// TweenAlpha animates the node's opacity to the target value.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(node.Alpha()), float32(to), duration, fn)
	g.apply = func(n *Node, v [4]float64) { n.SetAlpha(v[0]) }
	return g
}

// TweenRotation animates the node's rotation to the target angle in radians.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(node.Rotation()), float32(to), duration, fn)
	g.apply = func(n *Node, v [4]float64) { n.SetRotation(v[0]) }
	return g
}
