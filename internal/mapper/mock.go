package mapper

// MotionCall records one PlayMotion invocation.
type MotionCall struct {
	Group    string
	Index    int
	Priority int
}

// MockAvatar is a test implementation of AvatarModel that records every
// call. Parameters listed in Params resolve; everything else is unknown.
type MockAvatar struct {
	Params []string

	ParamValues   map[ParamHandle]float64
	Resolved      []string
	FocusX        float64
	FocusY        float64
	FocusCalls    int
	BodyX         float64
	BodyY         float64
	BodyZ         float64
	BodyCalls     int
	Motions       []MotionCall
	Expressions   []string
	MouthValues   []float64
	TrackingCalls []bool
}

// NewMockAvatar creates a MockAvatar exposing the given parameter names.
func NewMockAvatar(params ...string) *MockAvatar {
	return &MockAvatar{
		Params:      params,
		ParamValues: make(map[ParamHandle]float64),
	}
}

// ResolveParameter resolves a name to its index in Params.
func (a *MockAvatar) ResolveParameter(name string) (ParamHandle, bool) {
	for i, p := range a.Params {
		if p == name {
			a.Resolved = append(a.Resolved, name)
			return ParamHandle(i), true
		}
	}
	return 0, false
}

func (a *MockAvatar) SetParameter(h ParamHandle, value float64) {
	a.ParamValues[h] = value
}

func (a *MockAvatar) SetFocus(x, y float64) {
	a.FocusX, a.FocusY = x, y
	a.FocusCalls++
}

func (a *MockAvatar) SetBodyAngle(x, y, z float64) {
	a.BodyX, a.BodyY, a.BodyZ = x, y, z
	a.BodyCalls++
}

func (a *MockAvatar) PlayMotion(group string, index, priority int) {
	a.Motions = append(a.Motions, MotionCall{Group: group, Index: index, Priority: priority})
}

func (a *MockAvatar) SetExpression(id string) {
	a.Expressions = append(a.Expressions, id)
}

func (a *MockAvatar) SetMouthOpenness(value float64) {
	a.MouthValues = append(a.MouthValues, value)
}

func (a *MockAvatar) SetTrackingMode(enabled bool) {
	a.TrackingCalls = append(a.TrackingCalls, enabled)
}
