package camera

import "github.com/go-gl/mathgl/mgl32"

// Direction is a movement direction relative to the camera's orientation.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// CameraController owns the camera's position and orientation.
// It implements a first-person fly model: yaw and pitch in degrees define the front vector and
// movement happens along the local front, right and up axes.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition sets the camera's world-space position directly.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Yaw returns the heading in degrees. -90 looks down -Z.
	Yaw() float32

	// Pitch returns the elevation in degrees, within [-MaxPitch, MaxPitch].
	Pitch() float32

	// SetOrientation sets yaw and pitch in degrees. Pitch is clamped.
	//
	// Parameters:
	//   - yaw: the heading in degrees
	//   - pitch: the elevation in degrees
	SetOrientation(yaw, pitch float32)

	// Front returns the unit view direction.
	Front() mgl32.Vec3

	// Right returns the unit right vector.
	Right() mgl32.Vec3

	// Up returns the unit up vector, orthogonal to Front and Right.
	Up() mgl32.Vec3

	// Move translates the camera along a local axis by speed * dt.
	//
	// Parameters:
	//   - dir: the movement direction
	//   - dt: the elapsed time in seconds
	Move(dir Direction, dt float32)

	// Look rotates the camera by a mouse delta in pixels, scaled by the mouse sensitivity.
	// Positive dx turns right, positive dy looks up.
	//
	// Parameters:
	//   - dx: horizontal cursor delta
	//   - dy: vertical cursor delta, already inverted so up is positive
	Look(dx, dy float32)

	// Speed returns the movement speed in world units per second.
	Speed() float32

	// SetSpeed sets the movement speed in world units per second.
	//
	// Parameters:
	//   - speed: the new speed
	SetSpeed(speed float32)
}
