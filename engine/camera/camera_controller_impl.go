package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch is the largest absolute pitch in degrees, short of the poles where the basis flips.
const MaxPitch = 89

var worldUp = mgl32.Vec3{0, 1, 0}

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	yaw      float32
	pitch    float32

	front mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3

	speed            float32
	mouseSensitivity float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a fly controller at (0, 2, 8) looking down -Z and slightly down.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:               &sync.Mutex{},
		position:         mgl32.Vec3{0, 2, 8},
		yaw:              -90,
		pitch:            -10,
		speed:            2.5,
		mouseSensitivity: 0.1,
	}
	for _, option := range options {
		option(cc)
	}
	cc.pitch = common.Clamp(cc.pitch, -MaxPitch, MaxPitch)
	cc.updateVectors()
	return cc
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(p mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = p
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) SetOrientation(yaw, pitch float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw = yaw
	cc.pitch = common.Clamp(pitch, -MaxPitch, MaxPitch)
	cc.updateVectors()
}

func (cc *cameraControllerImpl) Front() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.front
}

func (cc *cameraControllerImpl) Right() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.right
}

func (cc *cameraControllerImpl) Up() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.up
}

func (cc *cameraControllerImpl) Move(dir Direction, dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	velocity := cc.speed * dt
	switch dir {
	case Forward:
		cc.position = cc.position.Add(cc.front.Mul(velocity))
	case Backward:
		cc.position = cc.position.Sub(cc.front.Mul(velocity))
	case Left:
		cc.position = cc.position.Sub(cc.right.Mul(velocity))
	case Right:
		cc.position = cc.position.Add(cc.right.Mul(velocity))
	case Up:
		cc.position = cc.position.Add(cc.up.Mul(velocity))
	case Down:
		cc.position = cc.position.Sub(cc.up.Mul(velocity))
	}
}

func (cc *cameraControllerImpl) Look(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw += dx * cc.mouseSensitivity
	cc.pitch = common.Clamp(cc.pitch+dy*cc.mouseSensitivity, -MaxPitch, MaxPitch)
	cc.updateVectors()
}

func (cc *cameraControllerImpl) Speed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}

func (cc *cameraControllerImpl) SetSpeed(speed float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.speed = speed
}

// updateVectors recomputes the orthonormal basis from yaw and pitch.
// Must be called with mu held.
func (cc *cameraControllerImpl) updateVectors() {
	sy, cy := math32.Sincos(mgl32.DegToRad(cc.yaw))
	sp, cp := math32.Sincos(mgl32.DegToRad(cc.pitch))
	cc.front = mgl32.Vec3{cy * cp, sp, sy * cp}.Normalize()
	cc.right = cc.front.Cross(worldUp).Normalize()
	cc.up = cc.right.Cross(cc.front).Normalize()
}
