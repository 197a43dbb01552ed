package rowan

import "fmt"

// Animation cycles a node through a list of texture frames. All frames
// normally come from one atlas page, so frame flips stay on the incremental
// texture-swap path and never split batches.
type Animation struct {
	node   *Node
	frames []*Texture
	fps    float64

	frame   int
	elapsed float64
	playing bool
	loop    bool

	onComplete func(*Node)
}

// NewAnimatedSprite creates a sprite node that steps through frames at the
// given rate. Requires at least one frame and a positive rate.
func NewAnimatedSprite(name string, frames []*Texture, fps float64) (*Node, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("rowan: animation %q: no frames", name)
	}
	if !(fps > 0) {
		return nil, fmt.Errorf("rowan: animation %q: invalid rate %g", name, fps)
	}
	n := NewSprite(name, frames[0])
	n.Kind = KindAnimatedSprite
	n.anim = &Animation{node: n, frames: frames, fps: fps, loop: true}
	return n, nil
}

// Play starts or resumes playback.
func (a *Animation) Play() { a.playing = true }

// Pause halts playback at the current frame.
func (a *Animation) Pause() { a.playing = false }

// Stop halts playback and rewinds to the first frame.
func (a *Animation) Stop() {
	a.playing = false
	a.elapsed = 0
	a.setFrame(0)
}

// SetLoop controls whether playback wraps. Non-looping animations pause on
// the final frame and fire the completion callback once.
func (a *Animation) SetLoop(loop bool) { a.loop = loop }

// OnComplete registers a callback fired when a non-looping animation ends.
func (a *Animation) OnComplete(fn func(*Node)) { a.onComplete = fn }

// Frame returns the current frame index.
func (a *Animation) Frame() int { return a.frame }

// IsPlaying reports whether the animation is advancing.
func (a *Animation) IsPlaying() bool { return a.playing }

// GotoFrame jumps to the given frame. Panics if out of range.
func (a *Animation) GotoFrame(i int) {
	if i < 0 || i >= len(a.frames) {
		panic(fmt.Sprintf("rowan: animation %q: frame %d out of range", a.node.Name, i))
	}
	a.elapsed = 0
	a.setFrame(i)
}

// Update advances playback by dt seconds. Call once per frame.
func (a *Animation) Update(dt float64) {
	if !a.playing {
		return
	}
	a.elapsed += dt
	step := 1 / a.fps
	for a.elapsed >= step {
		a.elapsed -= step
		next := a.frame + 1
		if next >= len(a.frames) {
			if !a.loop {
				a.playing = false
				a.setFrame(len(a.frames) - 1)
				if a.onComplete != nil {
					a.onComplete(a.node)
				}
				return
			}
			next = 0
		}
		a.setFrame(next)
	}
}

func (a *Animation) setFrame(i int) {
	a.frame = i
	a.node.SetTexture(a.frames[i])
}
