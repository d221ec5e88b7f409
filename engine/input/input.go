package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
)

// Exposure hotkey factors and limits.
const (
	ExposureDownFactor float32 = 0.97
	ExposureUpFactor   float32 = 1.03
	MinHotkeyExposure  float32 = 0.05
	MaxHotkeyExposure  float32 = 8
)

// Intent is everything one frame of input asks the engine to do besides moving the camera.
type Intent struct {
	ToggleRayMode     bool
	ToggleBVH         bool
	ToggleMotion      bool
	Reset             bool
	ReloadGeometry    bool
	ReloadEnvironment bool
	Quit              bool

	// Resized is set when at least one resize arrived; Width and Height hold the last one.
	Resized bool
	Width   int
	Height  int

	// SPP is the requested samples per frame; SPPChanged reports whether a hotkey set it.
	SPP        int
	SPPChanged bool

	// ExposureScale multiplies the exposure; 1 means unchanged.
	ExposureScale float32
}

// ApplyExposure scales exposure by the intent's factor, bounded to the hotkey limits.
//
// Parameters:
//   - exposure: the current exposure
//
// Returns:
//   - float32: the new exposure
func (in Intent) ApplyExposure(exposure float32) float32 {
	switch {
	case in.ExposureScale < 1:
		return max(MinHotkeyExposure, exposure*in.ExposureScale)
	case in.ExposureScale > 1:
		return min(MaxHotkeyExposure, exposure*in.ExposureScale)
	default:
		return exposure
	}
}

// handler is the implementation of the Handler interface.
type handler struct {
	mu *sync.Mutex

	cam  camera.Camera
	held map[uint32]bool

	pointerMode bool
	firstMouse  bool
	lastX       float32
	lastY       float32
}

// Handler turns window events into camera motion and a per-frame Intent.
// Edge actions fire once per key press; movement and exposure keys act every frame while held.
type Handler interface {
	// Process consumes one frame's events. Mouse look and scroll zoom are applied to the camera
	// immediately; the remaining actions are returned.
	//
	// Parameters:
	//   - events: the events drained from the window this frame
	//   - spp: the current samples per frame, the base for SPP hotkeys
	//
	// Returns:
	//   - Intent: the actions requested this frame
	Process(events []window.Event, spp int) Intent

	// Move applies held movement keys to the camera controller.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	Move(dt float32)

	// PointerMode reports whether the cursor is released for UI use, which disables mouse look.
	//
	// Returns:
	//   - bool: true in pointer mode
	PointerMode() bool
}

var _ Handler = &handler{}

// NewHandler creates a Handler that steers cam.
//
// Parameters:
//   - cam: the camera moved by mouse, scroll and movement keys
//
// Returns:
//   - Handler: the newly created handler
func NewHandler(cam camera.Camera) Handler {
	return &handler{
		mu:         &sync.Mutex{},
		cam:        cam,
		held:       make(map[uint32]bool),
		firstMouse: true,
	}
}

func (h *handler) Process(events []window.Event, spp int) Intent {
	h.mu.Lock()
	defer h.mu.Unlock()

	in := Intent{SPP: spp, ExposureScale: 1}
	for _, e := range events {
		switch e.Type {
		case window.EventResize:
			in.Resized = true
			in.Width = e.Width
			in.Height = e.Height
		case window.EventClose:
			in.Quit = true
		case window.EventKeyDown:
			if !h.held[e.Key] {
				h.press(e.Key, &in)
			}
			h.held[e.Key] = true
		case window.EventKeyUp:
			delete(h.held, e.Key)
		case window.EventMouseMove:
			h.look(e.X, e.Y)
		case window.EventScroll:
			h.cam.Zoom(e.ScrollY)
		}
	}

	if h.held[common.KeyLeftBracket] {
		in.ExposureScale *= ExposureDownFactor
	}
	if h.held[common.KeyRightBracket] {
		in.ExposureScale *= ExposureUpFactor
	}
	return in
}

func (h *handler) press(key uint32, in *Intent) {
	switch key {
	case common.KeyEsc:
		in.Quit = true
	case common.KeyF2:
		in.ToggleRayMode = true
	case common.KeyR:
		in.Reset = true
	case common.KeyF5:
		in.ToggleBVH = true
	case common.KeyF6:
		in.ToggleMotion = true
	case common.KeyL:
		in.ReloadGeometry = true
	case common.KeyF4:
		in.ReloadEnvironment = true
	case common.KeyP:
		h.pointerMode = !h.pointerMode
	case common.KeyF3:
		in.SPP = CycleSPP(in.SPP)
		in.SPPChanged = true
	case common.KeyUp:
		in.SPP = StepSPPUp(in.SPP)
		in.SPPChanged = true
	case common.KeyDown:
		in.SPP = StepSPPDown(in.SPP)
		in.SPPChanged = true
	case common.Key1, common.Key2, common.Key3, common.Key4:
		in.SPP = 2 << (key - common.Key1)
		in.SPPChanged = true
	}
}

func (h *handler) look(x, y float32) {
	if h.pointerMode || h.firstMouse {
		h.lastX, h.lastY = x, y
		h.firstMouse = false
		return
	}
	dx := x - h.lastX
	dy := h.lastY - y
	h.lastX, h.lastY = x, y
	if ctrl := h.cam.Controller(); ctrl != nil {
		ctrl.Look(dx, dy)
	}
}

func (h *handler) Move(dt float32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctrl := h.cam.Controller()
	if ctrl == nil {
		return
	}
	moves := []struct {
		key uint32
		dir camera.Direction
	}{
		{common.KeyW, camera.Forward},
		{common.KeyS, camera.Backward},
		{common.KeyA, camera.Left},
		{common.KeyD, camera.Right},
		{common.KeyQ, camera.Down},
		{common.KeyE, camera.Up},
	}
	for _, m := range moves {
		if h.held[m.key] {
			ctrl.Move(m.dir, dt)
		}
	}
}

func (h *handler) PointerMode() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pointerMode
}
