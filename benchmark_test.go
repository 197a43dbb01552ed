package rowan

import "testing"

func benchScene(b *testing.B, sprites int) (*Renderer, []*Node) {
	b.Helper()
	r, err := NewRenderer(newMockDevice())
	if err != nil {
		b.Fatalf("NewRenderer: %v", err)
	}
	root := NewContainer("root")
	r.SetRoot(root)

	tex := solidTexture(32, 32)
	nodes := make([]*Node, 0, sprites)
	for i := 0; i < sprites; i++ {
		spr := NewSprite("spr", tex)
		spr.SetPosition(float64(i%100), float64(i/100))
		root.AddChild(spr)
		nodes = append(nodes, spr)
	}
	if err := r.Group().Collect(); err != nil {
		b.Fatalf("Collect: %v", err)
	}
	return r, nodes
}

func BenchmarkFullCollect(b *testing.B) {
	r, _ := benchScene(b, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Root().dirty |= DirtyChild
		if err := r.Group().Collect(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIncrementalUpdate(b *testing.B) {
	r, nodes := benchScene(b, 1000)
	mover := nodes[500]
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mover.SetPosition(float64(i%64), 0)
		if err := r.Group().Collect(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCleanFrame(b *testing.B) {
	r, _ := benchScene(b, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.Group().Collect(); err != nil {
			b.Fatal(err)
		}
	}
}
