package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW = 87 // W key (ASCII)
	KeyA = 65 // A key (ASCII)
	KeyS = 83 // S key (ASCII)
	KeyD = 68 // D key (ASCII)
	KeyQ = 81 // Q key (ASCII)
	KeyE = 69 // E key (ASCII)
	KeyL = 76 // L key (ASCII)
	KeyP = 80 // P key (ASCII)
	KeyR = 82 // R key (ASCII)

	KeyLeftBracket  = 91 // [ key (ASCII)
	KeyRightBracket = 93 // ] key (ASCII)

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
)

// Non-printable keys (GLFW)
const (
	KeyEsc  = 256
	KeyDown = 264
	KeyUp   = 265
	KeyF2   = 291
	KeyF3   = 292
	KeyF4   = 293
	KeyF5   = 294
	KeyF6   = 295
)
