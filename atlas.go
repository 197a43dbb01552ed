package rowan

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log"
)

// Atlas holds uploaded atlas pages and named sprite textures cut from them.
// All textures from one page share a TextureBuffer, so sprites from the same
// page always land in the same batch slot.
type Atlas struct {
	dev      Device
	pages    []*TextureBuffer
	textures map[string]*Texture

	placeholder *Texture
}

// LoadAtlas parses TexturePacker JSON, uploads the page images, and builds
// the named texture table. Supports both the hash format (single "frames"
// object) and the multi-page array format ("textures" array).
func LoadAtlas(dev Device, jsonData []byte, pages []image.Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("rowan: failed to parse atlas JSON: %w", err)
	}

	a := &Atlas{
		dev:      dev,
		pages:    make([]*TextureBuffer, 0, len(pages)),
		textures: make(map[string]*Texture),
	}
	for i, img := range pages {
		h, err := dev.CreateTexture(img)
		if err != nil {
			return nil, fmt.Errorf("rowan: atlas page %d upload failed: %w", i, err)
		}
		b := img.Bounds()
		a.pages = append(a.pages, &TextureBuffer{Handle: h, Width: b.Dx(), Height: b.Dy()})
	}

	switch {
	case probe.Textures != nil:
		if err := a.parseArrayFormat(probe.Textures); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := a.parseHashFrames(probe.Frames, 0); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("rowan: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return a, nil
}

// Texture returns the named sprite texture. A missing name logs a warning in
// debug mode and returns a shared 1x1 magenta placeholder, so a typo shows
// up on screen instead of crashing.
func (a *Atlas) Texture(name string) *Texture {
	if t, ok := a.textures[name]; ok {
		return t
	}
	if debugChecks {
		log.Printf("rowan: atlas texture %q not found, using magenta placeholder", name)
	}
	return a.magenta()
}

// Has reports whether the atlas contains the named texture.
func (a *Atlas) Has(name string) bool {
	_, ok := a.textures[name]
	return ok
}

// NumPages returns the number of atlas pages.
func (a *Atlas) NumPages() int { return len(a.pages) }

// Release destroys all page textures. Nodes still referencing atlas textures
// stop rendering.
func (a *Atlas) Release() {
	for _, p := range a.pages {
		a.dev.DestroyTexture(p.Handle)
	}
	a.pages = nil
	a.textures = nil
}

func (a *Atlas) magenta() *Texture {
	if a.placeholder == nil {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 255, G: 0, B: 255, A: 255})
		t, err := NewTexture(a.dev, img)
		if err != nil {
			// Out of memory at 1x1; nothing sensible left to do.
			panic("rowan: failed to create placeholder texture: " + err.Error())
		}
		a.placeholder = t
	}
	return a.placeholder
}

// --- TexturePacker JSON structures ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func (a *Atlas) parseHashFrames(raw json.RawMessage, page int) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("rowan: failed to parse atlas frames: %w", err)
	}
	if page >= len(a.pages) {
		return fmt.Errorf("rowan: atlas frames reference page %d but only %d page images given", page, len(a.pages))
	}
	for name, f := range frames {
		a.textures[name] = a.frameToTexture(f, a.pages[page])
	}
	return nil
}

func (a *Atlas) parseArrayFormat(raw json.RawMessage) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("rowan: failed to parse atlas textures array: %w", err)
	}
	if len(textures) > len(a.pages) {
		return fmt.Errorf("rowan: atlas JSON has %d pages but only %d page images given", len(textures), len(a.pages))
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			a.textures[name] = a.frameToTexture(f, a.pages[i])
		}
	}
	return nil
}

// frameToTexture converts one TexturePacker frame to a Texture: authored
// size, trim rectangle, and normalized corner UVs. Rotated frames (stored 90
// degrees clockwise) get their corners permuted so they display upright.
func (a *Atlas) frameToTexture(f jsonFrame, page *TextureBuffer) *Texture {
	pw := float32(page.Width)
	ph := float32(page.Height)
	x := float32(f.Frame.X)
	y := float32(f.Frame.Y)
	w := float32(f.Frame.W)
	h := float32(f.Frame.H)

	t := &Texture{
		Width:  float64(f.SourceSize.W),
		Height: float64(f.SourceSize.H),
		Trim: Rect{
			X:      float64(f.SpriteSourceSize.X),
			Y:      float64(f.SpriteSourceSize.Y),
			Width:  float64(f.Frame.W),
			Height: float64(f.Frame.H),
		},
		Buffer: page,
	}
	if f.Rotated {
		// Stored rect spans h wide by w tall; unrotate by mapping the
		// sprite's TL to the stored rect's TR corner.
		t.UVs = [8]float32{
			(x + h) / pw, y / ph, // TL
			(x + h) / pw, (y + w) / ph, // TR
			x / pw, y / ph, // BL
			x / pw, (y + w) / ph, // BR
		}
		return t
	}
	t.UVs = [8]float32{
		x / pw, y / ph,
		(x + w) / pw, y / ph,
		x / pw, (y + h) / ph,
		(x + w) / pw, (y + h) / ph,
	}
	return t
}
