package expression

import (
	"math"

	"github.com/ayusman/abhinaya/internal/landmark"
)

// Feature extraction constants. Ratios come from the MediaPipe face mesh
// proportions of a frontal face at conversational distance.
const (
	eyeRatioClosed = 0.15 // lid/width ratio mapped to fully closed
	eyeRatioOpen   = 0.35 // lid/width ratio mapped to fully open

	browBaseline = 0.045 // neutral eye-center to brow distance
	browRange    = 0.02

	headAngleXGain = 100
	headAngleYGain = 150
	headAngleMax   = 30

	mouthOpenGain = 3
	smileGain     = 30
)

// extractFeatures computes the raw, pre-smoothing expression vector from a
// face observation. Total for any input geometry: degenerate distances fall
// back rather than dividing by zero.
func extractFeatures(face *landmark.FaceObservation) Vector {
	p := &face.Points

	v := Vector{FaceDetected: true}

	v.LeftEyeOpenness = eyeOpenness(
		p[landmark.FaceLeftEyeTop], p[landmark.FaceLeftEyeBottom],
		p[landmark.FaceLeftEyeOuter], p[landmark.FaceLeftEyeInner])
	v.RightEyeOpenness = eyeOpenness(
		p[landmark.FaceRightEyeTop], p[landmark.FaceRightEyeBottom],
		p[landmark.FaceRightEyeInner], p[landmark.FaceRightEyeOuter])

	v.LeftBrowY = browLift(
		p[landmark.FaceLeftEyeOuter], p[landmark.FaceLeftEyeInner],
		p[landmark.FaceLeftBrow])
	v.RightBrowY = browLift(
		p[landmark.FaceRightEyeInner], p[landmark.FaceRightEyeOuter],
		p[landmark.FaceRightBrow])

	nose := p[landmark.FaceNoseTip]
	cheekMidX := (p[landmark.FaceLeftCheek].X + p[landmark.FaceRightCheek].X) / 2
	faceMidY := (p[landmark.FaceForehead].Y + p[landmark.FaceChin].Y) / 2

	v.HeadAngleX = clamp((nose.X-cheekMidX)*headAngleXGain, -headAngleMax, headAngleMax)
	v.HeadAngleY = clamp((nose.Y-faceMidY)*headAngleYGain, -headAngleMax, headAngleMax)

	leftOuter := p[landmark.FaceLeftEyeOuter]
	rightOuter := p[landmark.FaceRightEyeOuter]
	roll := math.Atan2(rightOuter.Y-leftOuter.Y, rightOuter.X-leftOuter.X) * 180 / math.Pi
	v.HeadAngleZ = clamp(roll, -headAngleMax, headAngleMax)

	v.MouthOpenness = math.Min(1, mouthOpenRatio(face)*mouthOpenGain)
	v.MouthSmile = mouthSmile(p)

	v.FaceX = nose.X
	v.FaceY = nose.Y

	return v
}

// eyeOpenness maps the lid-distance to eye-width ratio onto [0,1], with
// ratio 0.15 -> 0 and ratio 0.35 -> 1.
func eyeOpenness(top, bottom, cornerA, cornerB landmark.Point3D) float64 {
	vertical := math.Abs(top.Y - bottom.Y)
	width := math.Abs(cornerA.X - cornerB.X)
	if width <= 0 {
		return 0
	}
	ratio := vertical / width
	return clamp((ratio-eyeRatioClosed)/(eyeRatioOpen-eyeRatioClosed), 0, 1)
}

// browLift measures the brow's vertical distance from the eye center against
// the neutral baseline: positive is raised, negative lowered.
func browLift(cornerA, cornerB, brow landmark.Point3D) float64 {
	eyeCenterY := (cornerA.Y + cornerB.Y) / 2
	lift := eyeCenterY - brow.Y
	return clamp((lift-browBaseline)/browRange, -1, 1)
}

// mouthOpenRatio is the vertical lip gap over the mouth width. A degenerate
// zero-width mouth substitutes the unnormalized gap so extreme geometry
// never divides by zero. This unscaled ratio also feeds the speaking
// hysteresis channel.
func mouthOpenRatio(face *landmark.FaceObservation) float64 {
	p := &face.Points
	gap := math.Abs(p[landmark.FaceLowerLip].Y - p[landmark.FaceUpperLip].Y)
	width := math.Abs(p[landmark.FaceMouthRight].X - p[landmark.FaceMouthLeft].X)
	if width <= 0 {
		return gap
	}
	return gap / width
}

// mouthSmile measures the average lift of the mouth corners above the lip
// center: positive is a smile, negative a frown.
func mouthSmile(p *[landmark.NumFaceLandmarks]landmark.Point3D) float64 {
	lipCenterY := (p[landmark.FaceUpperLip].Y + p[landmark.FaceLowerLip].Y) / 2
	cornerY := (p[landmark.FaceMouthLeft].Y + p[landmark.FaceMouthRight].Y) / 2
	return clamp((lipCenterY-cornerY)*smileGain, -1, 1)
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
