package window

import (
	"sync"
)

// ScriptedWindow is a Window without a platform behind it. Events are supplied with Push and
// returned by the next PollEvents. It drives headless runs and tests.
type ScriptedWindow struct {
	mu *sync.Mutex

	width    int
	height   int
	running  bool
	captured bool
	queue    []Event
}

var _ Window = &ScriptedWindow{}

// NewScriptedWindow creates an open ScriptedWindow of the given size.
//
// Parameters:
//   - width: the framebuffer width in pixels
//   - height: the framebuffer height in pixels
//
// Returns:
//   - *ScriptedWindow: the scripted window
func NewScriptedWindow(width, height int) *ScriptedWindow {
	return &ScriptedWindow{
		mu:      &sync.Mutex{},
		width:   width,
		height:  height,
		running: true,
	}
}

// Push queues events for the next PollEvents. Resize events update the reported size immediately
// and close events stop the window once polled.
func (s *ScriptedWindow) Push(events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		if e.Type == EventResize {
			s.width = e.Width
			s.height = e.Height
		}
		s.queue = append(s.queue, e)
	}
}

func (s *ScriptedWindow) PollEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.queue
	s.queue = nil
	for _, e := range events {
		if e.Type == EventClose {
			s.running = false
		}
	}
	return events
}

func (s *ScriptedWindow) SetCursorCaptured(captured bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = captured
}

// CursorCaptured reports the last value passed to SetCursorCaptured.
func (s *ScriptedWindow) CursorCaptured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captured
}

func (s *ScriptedWindow) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ScriptedWindow) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

func (s *ScriptedWindow) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

func (s *ScriptedWindow) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}
