package landmark

// Face mesh landmark indices following the MediaPipe 478-point face mesh.
// Only the points this engine reads are named; the rest of the mesh is
// carried through untouched for visualization clients.
const (
	FaceNoseTip  = 1
	FaceForehead = 10
	FaceChin     = 152

	FaceLeftCheek  = 234
	FaceRightCheek = 454

	// Left eye (subject's left, image right for a mirrored camera).
	FaceLeftEyeOuter  = 33
	FaceLeftEyeInner  = 133
	FaceLeftEyeTop    = 159
	FaceLeftEyeBottom = 145

	// Right eye.
	FaceRightEyeInner  = 362
	FaceRightEyeOuter  = 263
	FaceRightEyeTop    = 386
	FaceRightEyeBottom = 374

	FaceLeftBrow  = 105
	FaceRightBrow = 334

	FaceUpperLip   = 13
	FaceLowerLip   = 14
	FaceMouthLeft  = 61
	FaceMouthRight = 291

	NumFaceLandmarks = 478
)
