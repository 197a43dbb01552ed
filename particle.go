package rowan

import (
	"math"
	"math/rand/v2"
)

// particle holds per-particle simulation state.
type particle struct {
	x, y       float64
	vx, vy     float64
	life       float64 // remaining lifetime in seconds
	maxLife    float64
	startScale float32
	endScale   float32
	scale      float32
	startAlpha float32
	endAlpha   float32
	alpha      float32
	startR     float32
	startG     float32
	startB     float32
	endR       float32
	endG       float32
	endB       float32
	colorR     float32
	colorG     float32
	colorB     float32
}

// EmitterConfig controls how particles are spawned and behave.
type EmitterConfig struct {
	// MaxParticles is the pool size and the emitter's fixed buffer
	// footprint. New particles are silently dropped when full.
	MaxParticles int
	// EmitRate is the number of particles spawned per second.
	EmitRate float64
	// Lifetime is the range of particle lifetimes in seconds.
	Lifetime Range
	// Speed is the range of initial speeds in pixels per second.
	Speed Range
	// Angle is the range of emission angles in radians.
	Angle Range
	// StartScale interpolates to EndScale over each particle's lifetime.
	StartScale Range
	EndScale   Range
	// StartAlpha interpolates to EndAlpha over each particle's lifetime.
	StartAlpha Range
	EndAlpha   Range
	// Gravity is a constant acceleration applied every update.
	Gravity Vec2
	// StartColor interpolates to EndColor over each particle's lifetime.
	// Both multiply with the node's tint.
	StartColor Color
	EndColor   Color
}

// Emitter is a CPU-simulated particle pool rendered as one quad per pool
// slot. The pool size is fixed at construction so the emitter's reservation
// in the group buffers never changes; dead slots pack degenerate quads.
type Emitter struct {
	node      *Node
	config    EmitterConfig
	particles []particle
	alive     int
	emitAccum float64
	active    bool
}

// NewEmitter creates an emitter node rendering each particle with tex.
func NewEmitter(name string, tex *Texture, cfg EmitterConfig) *Node {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = 128
	}
	n := &Node{Name: name, Kind: KindEmitter, texture: tex}
	nodeDefaults(n)
	if tex != nil {
		n.width = tex.Width
		n.height = tex.Height
	}
	n.emitter = &Emitter{
		node:      n,
		config:    cfg,
		particles: make([]particle, cfg.MaxParticles),
	}
	n.renderObject = newRenderObject(n, emitterPacker{})
	return n
}

// Start begins emitting particles.
func (e *Emitter) Start() { e.active = true }

// Stop stops emitting. Existing particles live out their lifetimes.
func (e *Emitter) Stop() { e.active = false }

// Reset stops emitting and kills all alive particles.
func (e *Emitter) Reset() {
	e.active = false
	e.alive = 0
	e.emitAccum = 0
	e.invalidate()
}

// IsActive reports whether the emitter is emitting new particles.
func (e *Emitter) IsActive() bool { return e.active }

// AliveCount returns the number of alive particles.
func (e *Emitter) AliveCount() int { return e.alive }

// Config returns a pointer to the emitter's config for live tuning.
func (e *Emitter) Config() *EmitterConfig { return &e.config }

// Update advances the simulation by dt seconds and flags the node's packed
// geometry stale. Call once per frame before rendering.
func (e *Emitter) Update(dt float64) {
	gx := e.config.Gravity.X * dt
	gy := e.config.Gravity.Y * dt

	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.life -= dt
		if p.life <= 0 {
			// Swap-remove with the last alive particle.
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}
		p.vx += gx
		p.vy += gy
		p.x += p.vx * dt
		p.y += p.vy * dt

		t := float32(1.0 - p.life/p.maxLife)
		p.scale = lerp32(p.startScale, p.endScale, t)
		p.alpha = lerp32(p.startAlpha, p.endAlpha, t)
		p.colorR = lerp32(p.startR, p.endR, t)
		p.colorG = lerp32(p.startG, p.endG, t)
		p.colorB = lerp32(p.startB, p.endB, t)
		i++
	}

	if e.active && e.config.EmitRate > 0 {
		e.emitAccum += e.config.EmitRate * dt
		for e.emitAccum >= 1.0 {
			e.emitAccum -= 1.0
			if e.alive < len(e.particles) {
				e.spawn()
			}
		}
	}

	e.invalidate()
}

// invalidate marks the emitter node's vertex and color data stale.
func (e *Emitter) invalidate() {
	n := e.node
	n.dirty |= DirtyTransform | DirtyColor
	n.bubble(DirtyTransform | DirtyColor)
}

func (e *Emitter) spawn() {
	p := &e.particles[e.alive]

	angle := e.config.Angle.Random()
	speed := e.config.Speed.Random()
	p.vx = math.Cos(angle) * speed
	p.vy = math.Sin(angle) * speed
	p.x = 0
	p.y = 0

	p.life = e.config.Lifetime.Random()
	if p.life <= 0 {
		p.life = 1.0
	}
	p.maxLife = p.life

	p.startScale = float32(e.config.StartScale.Random())
	p.endScale = float32(e.config.EndScale.Random())
	p.scale = p.startScale

	p.startAlpha = float32(e.config.StartAlpha.Random())
	p.endAlpha = float32(e.config.EndAlpha.Random())
	p.alpha = p.startAlpha

	p.startR = float32(e.config.StartColor.R)
	p.startG = float32(e.config.StartColor.G)
	p.startB = float32(e.config.StartColor.B)
	p.endR = float32(e.config.EndColor.R)
	p.endG = float32(e.config.EndColor.G)
	p.endB = float32(e.config.EndColor.B)
	p.colorR = p.startR
	p.colorG = p.startG
	p.colorB = p.startB

	e.alive++
}

// lerp32 linearly interpolates between a and b by t.
func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Random returns a random float64 in [Min, Max].
func (r Range) Random() float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

// emitterPacker packs one quad per pool slot, centered on the particle
// position in the emitter's local space. Dead slots collapse to a point so
// the buffer reservation stays fixed while alive counts fluctuate.
type emitterPacker struct{}

func (emitterPacker) counts(n *Node) (int, int) {
	if n.texture == nil {
		return 0, 0
	}
	np := len(n.emitter.particles)
	return np * 4, np * 6
}

func (emitterPacker) packVertex(n *Node, out []float32) {
	e := n.emitter
	tex := n.texture
	m := &n.worldMatrix
	hw := tex.Trim.Width / 2
	hh := tex.Trim.Height / 2
	for i := range e.particles {
		o := out[i*8 : i*8+8]
		if i >= e.alive {
			for j := range o {
				o[j] = 0
			}
			continue
		}
		p := &e.particles[i]
		sw := hw * float64(p.scale)
		sh := hh * float64(p.scale)
		packCorner(o[0:], m, p.x-sw, p.y-sh)
		packCorner(o[2:], m, p.x+sw, p.y-sh)
		packCorner(o[4:], m, p.x-sw, p.y+sh)
		packCorner(o[6:], m, p.x+sw, p.y+sh)
	}
}

func (emitterPacker) packColor(n *Node, out []uint32) {
	e := n.emitter
	for i := range e.particles {
		var c uint32
		if i < e.alive {
			p := &e.particles[i]
			c = packWorldColor(Color{
				R: float64(p.colorR) * n.tint.R,
				G: float64(p.colorG) * n.tint.G,
				B: float64(p.colorB) * n.tint.B,
				A: 1,
			}, float64(p.alpha)*n.worldAlpha)
		}
		out[i*4] = c
		out[i*4+1] = c
		out[i*4+2] = c
		out[i*4+3] = c
	}
}

func (emitterPacker) packUV(n *Node, slot int, out []float32) {
	tex := n.texture
	s := float32(slot)
	np := len(n.emitter.particles)
	for i := 0; i < np; i++ {
		o := out[i*12 : i*12+12]
		for j := 0; j < 4; j++ {
			o[j*3+0] = tex.UVs[j*2+0]
			o[j*3+1] = tex.UVs[j*2+1]
			o[j*3+2] = s
		}
	}
}

func (emitterPacker) packIndex(n *Node, base uint32, out []uint32) {
	np := len(n.emitter.particles)
	for i := 0; i < np; i++ {
		b := base + uint32(i*4)
		o := out[i*6 : i*6+6]
		for j, rel := range quadIndexPattern {
			o[j] = b + rel
		}
	}
}
