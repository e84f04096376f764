// Package scene converts gesture and speaking events into particle-scene
// effects: world-space explosion origins, drag offsets, zoom scale, and the
// speaking pulse.
package scene

import (
	"math"
)

// Vec3 is a world-space position in the scene renderer's coordinate system.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Renderer is the scene-side consumer of interaction effects. All calls are
// fire-and-forget; the renderer owns its own animation timing.
type Renderer interface {
	TriggerExplosion(origin Vec3)
	SetDragging(active bool, dx, dy float64)
	SetScale(value float64)
	SetPulsing(active bool)
	SelectRegion(origin Vec3)
}

// Config holds the controller's camera model and effect tuning.
type Config struct {
	FOVDegrees      float64 // vertical field of view of the scene camera
	Aspect          float64 // viewport aspect ratio
	EffectDepth     float64 // distance along the camera ray for effect origins
	DragSensitivity float64 // drag delta to world offset factor
	DragDecay       float64 // per-update retention factor pulling drag to rest
	ScaleMin        float64
	ScaleMax        float64
	ScaleSmoothing  float64 // per-update lerp factor toward the target scale
	ViewportWidth   float64
	ViewportHeight  float64
}

// DefaultConfig returns the scene tuning used in production.
func DefaultConfig() Config {
	return Config{
		FOVDegrees:      60,
		Aspect:          16.0 / 9.0,
		EffectDepth:     30,
		DragSensitivity: 0.01,
		DragDecay:       0.92,
		ScaleMin:        0.3,
		ScaleMax:        2.5,
		ScaleSmoothing:  0.2,
		ViewportWidth:   1280,
		ViewportHeight:  720,
	}
}

// Controller is the scene-level consumer of gesture and speaking events.
// Update must be called once per frame to advance the drag decay and the
// smoothed zoom scale.
type Controller struct {
	config   Config
	renderer Renderer

	dragX, dragY float64
	dragging     bool

	scale       float64
	targetScale float64

	speaking bool
	pointing bool
	pointerX float64
	pointerY float64
	selected bool
}

// NewController creates a Controller driving the given renderer.
func NewController(config Config, renderer Renderer) *Controller {
	return &Controller{
		config:      config,
		renderer:    renderer,
		scale:       1,
		targetScale: 1,
	}
}

// SetRenderer swaps the renderer. With a nil renderer the controller is
// inert; state still accumulates so a renderer bound later sees the current
// scale and drag.
func (c *Controller) SetRenderer(r Renderer) {
	c.renderer = r
}

// HandleAirClick casts the click point into the scene and triggers an
// explosion at the effect depth along the camera ray.
func (c *Controller) HandleAirClick(screenX, screenY float64) {
	if c.renderer == nil {
		return
	}
	origin := c.raycast(screenX/c.config.ViewportWidth, screenY/c.config.ViewportHeight)
	c.renderer.TriggerExplosion(origin)
}

// HandleAirDrag accumulates drag deltas into the scene offset.
func (c *Controller) HandleAirDrag(dx, dy float64) {
	if c.renderer == nil {
		return
	}
	c.dragX += dx * c.config.DragSensitivity
	c.dragY += dy * c.config.DragSensitivity
	c.dragging = true
	c.renderer.SetDragging(true, c.dragX, c.dragY)
}

// HandlePinchZoom accumulates the zoom scale, clamped to the configured
// range. The rendered scale approaches the target in Update.
func (c *Controller) HandlePinchZoom(scale float64) {
	c.targetScale = clamp(c.targetScale*scale, c.config.ScaleMin, c.config.ScaleMax)
}

// HandleGestureChange tracks the pointing sub-condition and releases an
// active drag on idle.
func (c *Controller) HandleGestureChange(g string) {
	c.pointing = g == "point"
	if g == "idle" && c.dragging {
		c.dragging = false
		c.dragX, c.dragY = 0, 0
		if c.renderer != nil {
			c.renderer.SetDragging(false, 0, 0)
		}
	}
	c.recomputeSelection()
}

// HandlePointerMove tracks the pointer for region selection.
func (c *Controller) HandlePointerMove(x, y float64) {
	c.pointerX, c.pointerY = x, y
}

// HandleSpeakingStart turns the pulse on and re-evaluates the composite
// speaking-while-pointing condition.
func (c *Controller) HandleSpeakingStart() {
	c.speaking = true
	if c.renderer != nil {
		c.renderer.SetPulsing(true)
	}
	c.recomputeSelection()
}

// HandleSpeakingEnd turns the pulse off.
func (c *Controller) HandleSpeakingEnd() {
	c.speaking = false
	if c.renderer != nil {
		c.renderer.SetPulsing(false)
	}
	c.recomputeSelection()
}

// Update advances the per-frame dynamics: drag offset decays exponentially
// back to rest and the scale lerps toward its target.
func (c *Controller) Update() {
	if c.renderer == nil {
		return
	}

	if c.dragging {
		c.dragX *= c.config.DragDecay
		c.dragY *= c.config.DragDecay
		if math.Abs(c.dragX) < 1e-3 && math.Abs(c.dragY) < 1e-3 {
			c.dragging = false
			c.dragX, c.dragY = 0, 0
			c.renderer.SetDragging(false, 0, 0)
		} else {
			c.renderer.SetDragging(true, c.dragX, c.dragY)
		}
	}

	if c.scale != c.targetScale {
		c.scale += (c.targetScale - c.scale) * c.config.ScaleSmoothing
		if math.Abs(c.targetScale-c.scale) < 1e-4 {
			c.scale = c.targetScale
		}
		c.renderer.SetScale(c.scale)
	}
}

// Scale returns the current smoothed scene scale.
func (c *Controller) Scale() float64 {
	return c.scale
}

// recomputeSelection re-evaluates the composite speaking-while-pointing
// condition. It must run whenever either sub-condition changes, not only on
// gesture events: region selection fires once per activation of the
// composite.
func (c *Controller) recomputeSelection() {
	active := c.speaking && c.pointing
	if active && !c.selected {
		c.selected = true
		if c.renderer != nil {
			c.renderer.SelectRegion(c.raycast(c.pointerX, c.pointerY))
		}
		return
	}
	if !active {
		c.selected = false
	}
}

// raycast projects a normalized screen point onto the plane at the effect
// depth along the camera ray, using a pinhole camera model.
func (c *Controller) raycast(nx, ny float64) Vec3 {
	ndcX := nx*2 - 1
	ndcY := -(ny*2 - 1)

	halfH := math.Tan(c.config.FOVDegrees/2*math.Pi/180) * c.config.EffectDepth
	halfW := halfH * c.config.Aspect

	return Vec3{
		X: ndcX * halfW,
		Y: ndcY * halfH,
		Z: -c.config.EffectDepth,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
