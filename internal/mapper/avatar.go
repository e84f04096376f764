package mapper

import "github.com/ayusman/abhinaya/internal/expression"

// ParamHandle is an opaque handle to a resolved avatar model parameter,
// valid for the model that produced it.
type ParamHandle int

// AvatarModel is the narrow adapter the mapper drives. Implementations live
// outside this package, one per avatar runtime (the bundled web renderer
// implements it over the websocket bridge). All calls are fire-and-forget;
// the renderer owns presentation-side smoothing and interpolation timing.
type AvatarModel interface {
	// ResolveParameter looks up a named control parameter, reporting
	// whether this model exposes it. Called once per alias at bind time,
	// never per frame.
	ResolveParameter(name string) (ParamHandle, bool)

	// SetParameter writes a resolved control parameter.
	SetParameter(h ParamHandle, value float64)

	SetFocus(x, y float64)
	SetBodyAngle(x, y, z float64)
	PlayMotion(group string, index, priority int)
	SetExpression(id string)
	SetMouthOpenness(value float64)
	SetTrackingMode(enabled bool)
}

// Motion priorities understood by the avatar renderer.
const (
	MotionPriorityIdle   = 1
	MotionPriorityNormal = 2
	MotionPriorityForce  = 3
)

// Expression ids requested by the mapper.
const (
	ExpressionDefault   = "default"
	ExpressionSurprised = "surprised"
)

// Motion groups requested by the mapper.
const (
	MotionGroupTap  = "TapBody"
	MotionGroupWave = "FlickUp"
)

// channelSpec describes one expression channel: the alias names probed at
// bind time (different avatar models expose different parameter sets), the
// channel's sensitivity multiplier, and how to read its raw value from the
// expression vector.
type channelSpec struct {
	name        string
	aliases     []string
	sensitivity float64
	value       func(v expression.Vector) float64
}

// expressionChannels is the fixed mapping from expression-vector fields to
// avatar control parameters. Alias lists cover the Cubism 2 and Cubism 4
// naming conventions.
var expressionChannels = []channelSpec{
	{
		name:        "leftEyeOpen",
		aliases:     []string{"ParamEyeLOpen", "PARAM_EYE_L_OPEN"},
		sensitivity: 1.0,
		value:       func(v expression.Vector) float64 { return v.LeftEyeOpenness },
	},
	{
		name:        "rightEyeOpen",
		aliases:     []string{"ParamEyeROpen", "PARAM_EYE_R_OPEN"},
		sensitivity: 1.0,
		value:       func(v expression.Vector) float64 { return v.RightEyeOpenness },
	},
	{
		name:        "leftBrowY",
		aliases:     []string{"ParamBrowLY", "PARAM_BROW_L_Y"},
		sensitivity: 1.0,
		value:       func(v expression.Vector) float64 { return v.LeftBrowY },
	},
	{
		name:        "rightBrowY",
		aliases:     []string{"ParamBrowRY", "PARAM_BROW_R_Y"},
		sensitivity: 1.0,
		value:       func(v expression.Vector) float64 { return v.RightBrowY },
	},
	{
		name:        "angleX",
		aliases:     []string{"ParamAngleX", "PARAM_ANGLE_X"},
		sensitivity: 1.0,
		value:       func(v expression.Vector) float64 { return v.HeadAngleX },
	},
	{
		name:        "angleY",
		aliases:     []string{"ParamAngleY", "PARAM_ANGLE_Y"},
		sensitivity: 0.8,
		value:       func(v expression.Vector) float64 { return v.HeadAngleY },
	},
	{
		name:        "angleZ",
		aliases:     []string{"ParamAngleZ", "PARAM_ANGLE_Z"},
		sensitivity: 1.0,
		value:       func(v expression.Vector) float64 { return v.HeadAngleZ },
	},
	{
		name:        "mouthOpen",
		aliases:     []string{"ParamMouthOpenY", "PARAM_MOUTH_OPEN_Y"},
		sensitivity: 2.0,
		value:       func(v expression.Vector) float64 { return v.MouthOpenness },
	},
	{
		name:        "mouthForm",
		aliases:     []string{"ParamMouthForm", "PARAM_MOUTH_FORM"},
		sensitivity: 1.5,
		value:       func(v expression.Vector) float64 { return v.MouthSmile },
	},
}

// binding is a channel resolved against a concrete model. Unresolved
// channels keep resolved=false and are silently skipped every frame; this
// is capability negotiation, not an error.
type binding struct {
	spec     channelSpec
	handle   ParamHandle
	resolved bool
	smoothed float64
}

// resolveChannels probes each channel's alias list against the model once.
func resolveChannels(model AvatarModel, overrides map[string]string) []binding {
	bindings := make([]binding, 0, len(expressionChannels))
	for _, spec := range expressionChannels {
		b := binding{spec: spec}
		aliases := spec.aliases
		if name, ok := overrides[spec.name]; ok {
			aliases = append([]string{name}, aliases...)
		}
		for _, alias := range aliases {
			if h, ok := model.ResolveParameter(alias); ok {
				b.handle = h
				b.resolved = true
				break
			}
		}
		bindings = append(bindings, b)
	}
	return bindings
}
