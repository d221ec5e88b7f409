package resource

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemoryBackendTracksLiveBytes(t *testing.T) {
	m := NewMemoryBackend()

	buf, err := m.CreateBuffer(BufferDescriptor{Label: "a", Usage: BufferUsageStorage, Contents: []byte{1, 2, 3, 4}})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	tex, err := m.CreateTexture(TextureDescriptor{Label: "t", Width: 4, Height: 2, Format: TextureFormatRG16Float})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if got := m.LiveBytes(); got != 4+4*2*4 {
		t.Fatalf("LiveBytes = %d, want %d", got, 36)
	}

	buf.Release()
	buf.Release()
	tex.Release()
	if m.LiveBytes() != 0 || m.LiveBuffers() != 0 || m.LiveTextures() != 0 {
		t.Fatalf("leaked: bytes=%d buffers=%d textures=%d", m.LiveBytes(), m.LiveBuffers(), m.LiveTextures())
	}
}

func TestMemoryBackendWriteBuffer(t *testing.T) {
	m := NewMemoryBackend()
	buf, err := m.CreateBuffer(BufferDescriptor{Label: "u", Usage: BufferUsageUniform, Size: 8})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	if err := m.WriteBuffer(buf, 4, []byte{9, 9, 9, 9}); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}
	if got := m.BufferData(buf); !bytes.Equal(got, []byte{0, 0, 0, 0, 9, 9, 9, 9}) {
		t.Errorf("BufferData = %v", got)
	}
	if err := m.WriteBuffer(buf, 6, []byte{1, 2, 3, 4}); err == nil {
		t.Error("expected out-of-range write to fail")
	}

	buf.Release()
	if err := m.WriteBuffer(buf, 0, []byte{1}); !errors.Is(err, ErrReleased) {
		t.Errorf("write after release: got %v, want ErrReleased", err)
	}
}

func TestMemoryBackendBudget(t *testing.T) {
	m := NewMemoryBackend(WithBudget(16))
	if _, err := m.CreateBuffer(BufferDescriptor{Label: "a", Size: 12}); err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	_, err := m.CreateBuffer(BufferDescriptor{Label: "b", Size: 8})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("got %v, want ErrBudgetExceeded", err)
	}
	if m.LiveBuffers() != 1 {
		t.Errorf("LiveBuffers = %d, want 1", m.LiveBuffers())
	}
}

func TestMemoryBackendClearTexture(t *testing.T) {
	m := NewMemoryBackend()
	tex, err := m.CreateTexture(TextureDescriptor{Label: "t", Width: 2, Height: 2, Format: TextureFormatRGBA16Float})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	for range 3 {
		if err := m.ClearTexture(tex); err != nil {
			t.Fatalf("ClearTexture: %v", err)
		}
	}
	if got := m.TextureClears(tex); got != 3 {
		t.Errorf("TextureClears = %d, want 3", got)
	}

	other := NewMemoryBackend()
	if err := other.ClearTexture(tex); !errors.Is(err, ErrForeignResource) {
		t.Errorf("foreign clear: got %v, want ErrForeignResource", err)
	}
}

func TestBufferSetReplace(t *testing.T) {
	m := NewMemoryBackend()
	set := NewBufferSet(m, "test")

	if err := set.Replace(
		BufferDescriptor{Label: "a", Contents: []byte{1, 1, 1, 1}},
		BufferDescriptor{Label: "b", Contents: []byte{2, 2, 2, 2}},
	); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if set.Len() != 2 || m.LiveBuffers() != 2 {
		t.Fatalf("Len = %d, LiveBuffers = %d", set.Len(), m.LiveBuffers())
	}

	if err := set.Replace(
		BufferDescriptor{Label: "c", Contents: []byte{3, 3, 3, 3}},
		BufferDescriptor{Label: "d", Contents: []byte{4, 4, 4, 4}},
	); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if m.LiveBuffers() != 2 {
		t.Errorf("old buffers not released: LiveBuffers = %d", m.LiveBuffers())
	}
	if got := set.Buffer(1).Label(); got != "d" {
		t.Errorf("slot 1 = %q, want d", got)
	}
	if set.Buffer(2) != nil || set.Buffer(-1) != nil {
		t.Error("out-of-range slots should be nil")
	}
}

func TestBufferSetReplaceFailureKeepsPrevious(t *testing.T) {
	m := NewMemoryBackend()
	set := NewBufferSet(m, "test")
	if err := set.Replace(
		BufferDescriptor{Label: "a", Size: 8},
		BufferDescriptor{Label: "b", Size: 8},
	); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	first := set.Buffer(0)

	// 16 live bytes: the first new buffer fits, the second does not.
	m.SetBudget(40)
	err := set.Replace(
		BufferDescriptor{Label: "c", Size: 16},
		BufferDescriptor{Label: "d", Size: 16},
	)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("got %v, want ErrBudgetExceeded", err)
	}
	if set.Buffer(0) != first || set.Len() != 2 {
		t.Error("previous buffers were not kept")
	}
	if m.LiveBuffers() != 2 || m.LiveBytes() != 16 {
		t.Errorf("partial buffers leaked: buffers=%d bytes=%d", m.LiveBuffers(), m.LiveBytes())
	}
}

func TestBufferSetReleaseIdempotent(t *testing.T) {
	m := NewMemoryBackend()
	set := NewBufferSet(m, "test")
	if err := set.Replace(BufferDescriptor{Label: "a", Size: 4}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	set.Release()
	set.Release()
	if m.LiveBuffers() != 0 || set.Len() != 0 {
		t.Errorf("after Release: LiveBuffers = %d, Len = %d", m.LiveBuffers(), set.Len())
	}

	var nilSet *bufferSet
	nilSet.Release()
}
