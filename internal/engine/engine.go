// Package engine composes the recognizer, extractor, mapper, and scene
// controller into a single per-frame processing unit.
package engine

import (
	"sync"
	"time"

	"github.com/ayusman/abhinaya/internal/expression"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/mapper"
	"github.com/ayusman/abhinaya/internal/scene"
)

// Config aggregates the tuning of every stage.
type Config struct {
	Gesture    gesture.Config
	Expression expression.Config
	Mapper     mapper.Config
	Scene      scene.Config
}

// DefaultConfig returns the production tuning for all stages.
func DefaultConfig() Config {
	return Config{
		Gesture:    gesture.DefaultConfig(),
		Expression: expression.DefaultConfig(),
		Mapper:     mapper.DefaultConfig(),
		Scene:      scene.DefaultConfig(),
	}
}

// Observers are optional passthrough listeners for clients outside the
// control path, such as the websocket diagnostics stream. Unset fields are
// skipped.
type Observers struct {
	OnHandPresence func(isLeft, isRight bool)
	OnGesture      func(g gesture.Gesture)
	OnExpression   func(v expression.Vector)
	OnLandmarks    func(hands []landmark.HandObservation)
	OnSpeaking     func(active bool)
}

// Engine routes each landmark frame through the recognizer and extractor and
// fans their events out to the mapper and the scene controller. It holds no
// OS resources; the capture Runner owns those. Not safe for concurrent use:
// frames flow through one at a time.
type Engine struct {
	config     Config
	recognizer *gesture.Recognizer
	extractor  *expression.Extractor
	mapper     *mapper.Mapper
	scene      *scene.Controller
	observers  Observers
	lastTS     int64
}

// New creates an Engine with all stages wired. The engine is inert until an
// avatar model or scene renderer is bound.
func New(config Config) *Engine {
	e := &Engine{config: config, lastTS: -1}

	e.mapper = mapper.New(config.Mapper)
	e.scene = scene.NewController(config.Scene, nil)

	e.recognizer = gesture.NewRecognizer(config.Gesture, gesture.Callbacks{
		OnHandDetected: func(isLeft, isRight bool) {
			if e.observers.OnHandPresence != nil {
				e.observers.OnHandPresence(isLeft, isRight)
			}
		},
		OnGestureChange: func(g gesture.Gesture) {
			e.mapper.HandleGestureChange(g)
			e.scene.HandleGestureChange(string(g))
			if e.observers.OnGesture != nil {
				e.observers.OnGesture(g)
			}
		},
		OnAirClick: func(screenX, screenY float64) {
			e.mapper.HandleAirClick(screenX, screenY)
			e.scene.HandleAirClick(screenX, screenY)
		},
		OnAirDrag: func(dx, dy float64) {
			e.mapper.HandleAirDrag(dx, dy)
			e.scene.HandleAirDrag(dx, dy)
		},
		OnPinchZoom: func(scale float64) {
			e.mapper.HandlePinchZoom(scale)
			e.scene.HandlePinchZoom(scale)
		},
		OnPointerMove: func(x, y float64) {
			e.mapper.HandlePointerMove(x, y)
			e.scene.HandlePointerMove(x, y)
		},
		OnLandmarksUpdate: func(hands []landmark.HandObservation) {
			if e.observers.OnLandmarks != nil {
				e.observers.OnLandmarks(hands)
			}
		},
	})

	e.extractor = expression.NewExtractor(config.Expression, expression.Callbacks{
		OnExpressionUpdate: func(v expression.Vector) {
			e.mapper.HandleExpression(v)
			if e.observers.OnExpression != nil {
				e.observers.OnExpression(v)
			}
		},
		OnSpeakingStart: func() {
			e.mapper.HandleSpeakingStart()
			e.scene.HandleSpeakingStart()
			if e.observers.OnSpeaking != nil {
				e.observers.OnSpeaking(true)
			}
		},
		OnSpeakingEnd: func(d time.Duration) {
			e.mapper.HandleSpeakingEnd(d)
			e.scene.HandleSpeakingEnd()
			if e.observers.OnSpeaking != nil {
				e.observers.OnSpeaking(false)
			}
		},
		OnMouthOpennessChange: func(value float64) {
			e.mapper.HandleMouthOpenness(value)
		},
	})

	return e
}

// SetObservers installs the passthrough listeners. Call before frames flow.
func (e *Engine) SetObservers(o Observers) {
	e.observers = o
}

// BindAvatar binds the avatar model the mapper drives. A nil model detaches
// the avatar and leaves the mapper inert.
func (e *Engine) BindAvatar(model mapper.AvatarModel, overrides map[string]string) {
	e.mapper.Bind(model, overrides)
}

// BindScene binds the scene renderer. A nil renderer detaches it.
func (e *Engine) BindScene(r scene.Renderer) {
	e.scene.SetRenderer(r)
}

// ProcessFrame runs one landmark frame through every stage. Hand events fire
// before expression events; the scene controller advances last. A frame whose
// timestamp equals the previously processed one is dropped whole, so the
// scene's drag decay and zoom lerp advance once per distinct frame.
func (e *Engine) ProcessFrame(frame landmark.Frame) {
	if frame.TimestampMs == e.lastTS {
		return
	}
	e.lastTS = frame.TimestampMs

	e.recognizer.ProcessFrame(frame.TimestampMs, frame.Hands)
	e.extractor.ProcessFrame(frame.TimestampMs, frame.Face)
	e.scene.Update()
}

// Recognizer returns the gesture recognizer stage.
func (e *Engine) Recognizer() *gesture.Recognizer {
	return e.recognizer
}

// Extractor returns the expression extractor stage.
func (e *Engine) Extractor() *expression.Extractor {
	return e.extractor
}

// Mapper returns the parameter mapper stage.
func (e *Engine) Mapper() *mapper.Mapper {
	return e.mapper
}

// Scene returns the scene interaction controller.
func (e *Engine) Scene() *scene.Controller {
	return e.scene
}

var (
	defaultMu     sync.Mutex
	defaultEngine *Engine
)

// Default returns the process-wide engine, creating it on first use.
// Repeated calls return the same instance without reinitializing anything.
func Default() *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = New(DefaultConfig())
	}
	return defaultEngine
}

// ReleaseDefault detaches and discards the process-wide engine. Safe to call
// repeatedly; the next Default call creates a fresh instance.
func ReleaseDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		return
	}
	defaultEngine.BindAvatar(nil, nil)
	defaultEngine.BindScene(nil)
	defaultEngine = nil
}
