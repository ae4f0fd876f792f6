package software

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/shinji-kodama/iconbatch/internal/model"
)

// Angle is a camera direction: yaw around the vertical axis, measured from
// the south (+Z) side towards east (+X), and pitch above the horizon, both
// in degrees.
type Angle struct {
	Yaw   float32
	Pitch float32
}

// presetAngles is the renderer's camera preset table.
var presetAngles = map[model.CameraPreset]Angle{
	model.PresetIsometricRight: {Yaw: 45, Pitch: 30},
	model.PresetIsometricLeft:  {Yaw: -45, Pitch: 30},
	model.PresetTop:            {Yaw: 0, Pitch: 90},
	model.PresetSouth:          {Yaw: 0, Pitch: 0},
	model.PresetEast:           {Yaw: 90, Pitch: 0},
}

// PresetAngle returns the angle of a preset.
func PresetAngle(p model.CameraPreset) (Angle, bool) {
	a, ok := presetAngles[p]
	return a, ok
}

// View returns the view matrix looking at the origin from this angle.
func (a Angle) View() mgl32.Mat4 {
	yaw := mgl32.DegToRad(a.Yaw)
	pitch := mgl32.DegToRad(a.Pitch)

	eye := mgl32.Vec3{
		sin(yaw) * cos(pitch),
		sin(pitch),
		cos(yaw) * cos(pitch),
	}

	up := mgl32.Vec3{0, 1, 0}
	// Looking straight down the vertical axis, keep north at the top.
	if a.Pitch >= 89.9 || a.Pitch <= -89.9 {
		up = mgl32.Vec3{0, 0, -1}
	}
	return mgl32.LookAtV(eye, mgl32.Vec3{}, up)
}
