package mask

import "testing"

func TestGridPixel(t *testing.T) {
	g := DefaultBathyGrid

	col, row, err := g.Pixel(-180, 84.25)
	if err != nil || col != 0 || row != 0 {
		t.Fatalf("origin pixel = (%d, %d), err=%v", col, row, err)
	}

	if _, _, err := g.Pixel(-200, 0); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds for out-of-range longitude, got %v", err)
	}
	if _, _, err := g.Pixel(0, 90); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds for out-of-range latitude, got %v", err)
	}
}

func TestRasterPasses(t *testing.T) {
	g := DefaultBathyGrid
	g.Width, g.Height = 2, 2
	r := &Raster{
		Grid: g,
		Data: []uint32{OffSentinel, 1, 2, OffSentinel},
	}

	if !r.Passes(g.OriginLon+g.CellSize*1.5, g.OriginLat-g.CellSize*0.5) {
		t.Fatal("expected pixel (1,0) to pass (non-sentinel value)")
	}
	if r.Passes(g.OriginLon+g.CellSize*0.5, g.OriginLat-g.CellSize*0.5) {
		t.Fatal("expected pixel (0,0) to be masked off")
	}
	// A coordinate outside the grid entirely is treated as masked off.
	if r.Passes(-200, 0) {
		t.Fatal("expected out-of-bounds sample to be treated as masked off")
	}
}
