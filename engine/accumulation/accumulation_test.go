package accumulation

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
)

func newRecreated(t *testing.T, w, h int) (*resource.MemoryBackend, Buffer) {
	t.Helper()
	backend := resource.NewMemoryBackend()
	b := NewBuffer(backend)
	if err := b.Recreate(w, h); err != nil {
		t.Fatalf("Recreate(%d, %d): %v", w, h, err)
	}
	return backend, b
}

func TestRecreateAllocatesAndClears(t *testing.T) {
	backend, b := newRecreated(t, 64, 32)

	if b.FrameIndex() != 0 || b.WriteIndex() != 0 {
		t.Errorf("counters = %d/%d, want 0/0", b.FrameIndex(), b.WriteIndex())
	}
	if b.ReadTex() == b.WriteTex() {
		t.Error("read and write targets alias")
	}
	if backend.LiveTextures() != 3 {
		t.Errorf("LiveTextures = %d, want 3", backend.LiveTextures())
	}
	for _, tex := range []resource.Texture{b.ReadTex(), b.WriteTex(), b.MotionTex()} {
		if got := backend.TextureClears(tex); got != 1 {
			t.Errorf("%s cleared %d times, want 1", tex.Label(), got)
		}
	}
	if b.WriteTex().Format() != ColorFormat || b.MotionTex().Format() != MotionFormat {
		t.Error("unexpected texture formats")
	}
}

func TestRecreateIgnoresNonPositiveSizes(t *testing.T) {
	backend, b := newRecreated(t, 16, 16)
	write := b.WriteTex()
	for _, size := range [][2]int{{0, 16}, {16, 0}, {-1, -1}} {
		if err := b.Recreate(size[0], size[1]); err != nil {
			t.Fatalf("Recreate(%v): %v", size, err)
		}
	}
	if b.WriteTex() != write || b.Width() != 16 || backend.TextureClears(write) != 1 {
		t.Error("non-positive resize changed the history")
	}
}

func TestRecreateSameSizeResets(t *testing.T) {
	backend, b := newRecreated(t, 16, 16)
	b.SwapAfterFrame()
	b.SwapAfterFrame()
	b.SwapAfterFrame()
	write := b.WriteTex()

	if err := b.Recreate(16, 16); err != nil {
		t.Fatalf("Recreate: %v", err)
	}
	if b.FrameIndex() != 0 || b.WriteIndex() != 0 {
		t.Errorf("counters = %d/%d, want 0/0", b.FrameIndex(), b.WriteIndex())
	}
	if backend.LiveTextures() != 3 {
		t.Errorf("same-size recreate reallocated: LiveTextures = %d", backend.LiveTextures())
	}
	if got := backend.TextureClears(write); got != 2 {
		t.Errorf("write target cleared %d times, want 2", got)
	}
}

func TestResizeSequence(t *testing.T) {
	backend, b := newRecreated(t, 800, 600)
	prev := b.WriteTex()

	for _, size := range [][2]int{{1920, 1080}, {800, 600}} {
		b.SwapAfterFrame()
		if err := b.Recreate(size[0], size[1]); err != nil {
			t.Fatalf("Recreate(%v): %v", size, err)
		}
		if b.WriteTex() == prev {
			t.Errorf("Recreate(%v) did not reallocate", size)
		}
		if b.Width() != size[0] || b.Height() != size[1] {
			t.Errorf("size = %dx%d, want %v", b.Width(), b.Height(), size)
		}
		if b.FrameIndex() != 0 {
			t.Errorf("FrameIndex = %d after Recreate(%v)", b.FrameIndex(), size)
		}
		if b.WriteTex().Width() != size[0] {
			t.Errorf("texture width = %d", b.WriteTex().Width())
		}
		prev = b.WriteTex()
	}
	if backend.LiveTextures() != 3 {
		t.Errorf("old textures leaked: LiveTextures = %d", backend.LiveTextures())
	}
}

func TestSwapParity(t *testing.T) {
	_, b := newRecreated(t, 8, 8)
	for n := 1; n <= 9; n++ {
		read, write := b.ReadTex(), b.WriteTex()
		b.SwapAfterFrame()
		if b.FrameIndex() != uint32(n) {
			t.Fatalf("FrameIndex = %d, want %d", b.FrameIndex(), n)
		}
		if b.WriteIndex() != n%2 {
			t.Fatalf("WriteIndex = %d, want %d", b.WriteIndex(), n%2)
		}
		if b.ReadTex() != write || b.WriteTex() != read {
			t.Fatal("roles did not exchange")
		}
	}
}

func TestResetClearsWriteAndMotion(t *testing.T) {
	for _, swaps := range []int{0, 1, 2, 3} {
		backend, b := newRecreated(t, 8, 8)
		for i := 0; i < swaps; i++ {
			b.SwapAfterFrame()
		}

		if err := b.Reset(); err != nil {
			t.Fatalf("swaps %d: Reset: %v", swaps, err)
		}
		if b.FrameIndex() != 0 || b.WriteIndex() != 0 {
			t.Errorf("swaps %d: counters = %d/%d, want 0/0", swaps, b.FrameIndex(), b.WriteIndex())
		}
		// Recreate cleared every target once; Reset clears the post-reset write target and motion.
		if got := backend.TextureClears(b.WriteTex()); got != 2 {
			t.Errorf("swaps %d: write target clears = %d, want 2", swaps, got)
		}
		if got := backend.TextureClears(b.MotionTex()); got != 2 {
			t.Errorf("swaps %d: motion clears = %d, want 2", swaps, got)
		}
		if got := backend.TextureClears(b.ReadTex()); got != 1 {
			t.Errorf("swaps %d: read target clears = %d, want 1", swaps, got)
		}
		if backend.LiveTextures() != 3 {
			t.Errorf("swaps %d: Reset reallocated", swaps)
		}
	}
}

func TestResetBeforeRecreate(t *testing.T) {
	b := NewBuffer(resource.NewMemoryBackend())
	if err := b.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if b.WriteTex() != nil || b.FrameIndex() != 0 {
		t.Error("Reset before Recreate changed state")
	}
}

func TestRecreateFailureReleasesPartial(t *testing.T) {
	// Room for both color targets at 8 bytes per texel but not the motion target.
	backend := resource.NewMemoryBackend(resource.WithBudget(2 * 16 * 16 * 8))
	b := NewBuffer(backend)

	err := b.Recreate(16, 16)
	if !errors.Is(err, resource.ErrBudgetExceeded) {
		t.Fatalf("got %v, want ErrBudgetExceeded", err)
	}
	if backend.LiveTextures() != 0 || b.WriteTex() != nil {
		t.Errorf("partial allocation leaked: LiveTextures = %d", backend.LiveTextures())
	}
}

func TestReleaseIdempotent(t *testing.T) {
	backend, b := newRecreated(t, 8, 8)
	b.Release()
	b.Release()
	if backend.LiveTextures() != 0 {
		t.Errorf("LiveTextures = %d", backend.LiveTextures())
	}

	var nilBuf *buffer
	nilBuf.Release()
}

func TestGBufferRecreate(t *testing.T) {
	backend := resource.NewMemoryBackend()
	g := NewGBuffer(backend)

	if err := g.Recreate(0, 10); err != nil || g.PositionTex() != nil {
		t.Fatalf("non-positive Recreate allocated: %v", err)
	}
	if err := g.Recreate(32, 16); err != nil {
		t.Fatalf("Recreate: %v", err)
	}
	pos := g.PositionTex()
	if pos == nil || g.NormalTex() == nil || pos.Format() != GBufferFormat {
		t.Fatal("targets not allocated")
	}

	if err := g.Recreate(32, 16); err != nil {
		t.Fatalf("Recreate: %v", err)
	}
	if g.PositionTex() != pos {
		t.Error("same-size Recreate reallocated")
	}

	if err := g.Recreate(64, 64); err != nil {
		t.Fatalf("Recreate: %v", err)
	}
	if g.PositionTex() == pos || g.Width() != 64 || backend.LiveTextures() != 2 {
		t.Errorf("resize: width=%d live=%d", g.Width(), backend.LiveTextures())
	}

	g.Release()
	g.Release()
	if backend.LiveTextures() != 0 {
		t.Errorf("LiveTextures = %d after Release", backend.LiveTextures())
	}
}
