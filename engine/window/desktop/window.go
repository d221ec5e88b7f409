package desktop

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a GLFW window that can host a WebGPU surface.
type Window interface {
	window.Window

	// SurfaceDescriptor returns the descriptor the renderer uses to create its surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor or nil once closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state and the pending event queue.
type engineWindow struct {
	mu *sync.Mutex

	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// minWidth and minHeight bound resizing.
	minWidth  int
	minHeight int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// queue holds events received since the last PollEvents.
	queue []window.Event
}

var _ Window = &engineWindow{}

// NewWindow creates and opens a new GLFW window with the specified options.
// Applies default values first, then each option in order.
// It panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "oxy-trace",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 200,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) push(e window.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e.Type == window.EventResize {
		w.width = e.Width
		w.height = e.Height
	}
	w.queue = append(w.queue, e)
}

func (w *engineWindow) PollEvents() []window.Event {
	platformProcessMessages(w)

	w.mu.Lock()
	defer w.mu.Unlock()
	events := w.queue
	w.queue = nil
	return events
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	platformSetCursorCaptured(w, captured)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}
