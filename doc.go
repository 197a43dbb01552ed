// Package rowan is a retained-mode 2D scene-graph renderer with incremental
// GPU batching.
//
// Rowan keeps the scene tree and the packed vertex data alive between frames.
// Property writes mark nodes dirty; each frame the renderer either patches
// the affected buffer regions in place or, when the tree structure changed,
// rebuilds the batch list from scratch. A static scene costs almost nothing
// per frame.
//
// # Quick start
//
// Create a device, a renderer, and a tree of nodes, then render each frame:
//
//	dev := rowan.NewEbitenDevice()
//	rend, _ := rowan.NewRenderer(dev)
//
//	root := rowan.NewContainer("root")
//	rend.SetRoot(root)
//
//	sprite := rowan.NewSprite("hero", atlas.Texture("hero_idle"))
//	sprite.SetPosition(100, 50)
//	root.AddChild(sprite)
//
//	// in ebiten.Game.Draw:
//	rend.Render(dev.WrapScreen(screen))
//
// # Scene graph
//
// Every visual element is a [Node]. Children inherit their parent's
// transform, alpha, and tint. Create nodes with typed constructors:
// [NewContainer], [NewSprite], [NewText], [NewEmitter], [NewCanvas],
// [NewAnimatedSprite], [NewShapeRect] and the other shape constructors.
//
// Nodes are mutated through setters ([Node.SetPosition], [Node.SetAlpha],
// [Node.SetTexture], ...). Writing the current value back is free; any real
// change marks exactly the work the renderer has to redo.
//
// # Caching and filters
//
// [Node.SetCache] renders a subtree once and splices the result into the
// parent's draw stream, so edits elsewhere never touch it.
// [Node.SetFilters] renders a subtree offscreen, runs it through a
// [Filter] chain ([NewColorMatrixFilter], [NewBlurFilter],
// [NewOutlineFilter] on the ebiten backend), and composites the output as a
// single quad. Filtered output is kept until the content or a filter
// parameter actually changes.
//
// # Backends
//
// The core packs into [Device]-owned buffers and never imports a graphics
// API. [EbitenDevice] is the included backend for [Ebitengine]; property
// tweens use [gween].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package rowan
