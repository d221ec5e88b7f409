package window

// EventType identifies the kind of a window Event.
type EventType int

const (
	EventResize EventType = iota
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventScroll
	EventClose
)

// Event is one queued window event. Only the fields relevant to Type are set.
type Event struct {
	Type EventType

	// Width and Height are the new framebuffer size for EventResize.
	Width  int
	Height int

	// Key is the key code for EventKeyDown and EventKeyUp (see common key codes).
	Key uint32

	// X and Y are the cursor position for EventMouseMove.
	X float32
	Y float32

	// ScrollY is the vertical wheel offset for EventScroll. Positive scrolls up.
	ScrollY float32
}

// Window is a frame-loop friendly window: platform events are queued as they arrive and handed
// to the engine in one batch per frame by PollEvents.
// Platform windows that can host a GPU surface live in the desktop subpackage.
type Window interface {
	// PollEvents pumps the platform message queue and drains every event queued since the last call.
	//
	// Returns:
	//   - []Event: the queued events in arrival order
	PollEvents() []Event

	// SetCursorCaptured hides and locks the cursor for mouse look, or releases it.
	//
	// Parameters:
	//   - captured: true to capture the cursor
	SetCursorCaptured(captured bool)

	// IsRunning reports whether the window is open.
	//
	// Returns:
	//   - bool: true until the window is closed
	IsRunning() bool

	// Close destroys the window.
	//
	// Returns:
	//   - error: an error if the window was never initialized
	Close() error

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: the height
	Height() int
}
