package components

import (
	"github.com/spaghettifunk/preview/engine/math"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

/**
 * @brief A perspective camera looking from Position at Target. The view
 * matrix is rebuilt lazily whenever one of them changes.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/** @brief The point the camera looks at. Use SetTarget(). */
	Target math.Vec3
	/** @brief The up direction used to orient the view. */
	Up math.Vec3
	/** @brief Vertical field of view in radians. */
	FovRadians float32
	NearClip   float32
	FarClip    float32
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: IMPORTANT: Do not get this directly, use View() instead
	 * so the view matrix is recalculated when needed.
	 */
	ViewMatrix math.Mat4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera(position, target math.Vec3, fovRadians, nearClip, farClip float32) *Camera {
	camera := &Camera{}
	camera.Reset()
	camera.Position = position
	camera.Target = target
	camera.FovRadians = fovRadians
	camera.NearClip = nearClip
	camera.FarClip = farClip
	camera.IsDirty = true
	return camera
}

// Reset puts the camera at the origin looking down -Z.
func (c *Camera) Reset() {
	c.Position = math.NewVec3Zero()
	c.Target = math.NewVec3Forward()
	c.Up = math.NewVec3Up()
	c.FovRadians = math.DegToRad(45.0)
	c.NearClip = 0.1
	c.FarClip = 100.0
	c.IsDirty = false
	c.ViewMatrix = math.NewMat4LookAt(c.Position, c.Target, c.Up)
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) GetTarget() math.Vec3 {
	return c.Target
}

func (c *Camera) SetTarget(target math.Vec3) {
	c.Target = target
	c.IsDirty = true
}

func (c *Camera) View() math.Mat4 {
	if c.IsDirty {
		c.ViewMatrix = math.NewMat4LookAt(c.Position, c.Target, c.Up)
		c.IsDirty = false
	}
	return c.ViewMatrix
}

/**
 * @brief The projection matrix for a render target of the given aspect
 * ratio (width / height).
 */
func (c *Camera) Projection(aspectRatio float32) math.Mat4 {
	if aspectRatio <= 0 {
		aspectRatio = 1
	}
	return math.NewMat4Perspective(c.FovRadians, aspectRatio, c.NearClip, c.FarClip)
}

func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalized()
}

func (c *Camera) Right() math.Vec3 {
	return c.Forward().Cross(c.Up).Normalized()
}

// MoveForward moves the camera and its target together.
func (c *Camera) MoveForward(amount float32) {
	c.move(c.Forward().MulScalar(amount))
}

func (c *Camera) MoveBackward(amount float32) {
	c.move(c.Forward().MulScalar(-amount))
}

func (c *Camera) MoveRight(amount float32) {
	c.move(c.Right().MulScalar(amount))
}

func (c *Camera) MoveLeft(amount float32) {
	c.move(c.Right().MulScalar(-amount))
}

func (c *Camera) move(direction math.Vec3) {
	c.Position = c.Position.Add(direction)
	c.Target = c.Target.Add(direction)
	c.IsDirty = true
}

/**
 * @brief Orbits the camera around its target about the up axis.
 */
func (c *Camera) Orbit(angleRadians float32) {
	offset := c.Position.Sub(c.Target).ToVec4(0)
	offset = offset.Transform(math.NewQuatFromAxisAngle(c.Up, angleRadians, true).ToMat4())
	c.Position = c.Target.Add(offset.ToVec3())
	c.IsDirty = true
}

/**
 * @brief Builds the uniform Matrix for one draw. The resulting matrix
 * transforms a model-space position into clip space: model first, then
 * view, then projection.
 */
func NewMVP(model, view, projection math.Mat4) metadata.Matrix {
	return metadata.Matrix{MVP: model.Mul(view).Mul(projection)}
}
