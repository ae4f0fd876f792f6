package software

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tidwall/jsonc"
)

// defaultTextureSize is assumed when a geometry omits its texture size.
const defaultTextureSize = 16

// ErrNoGeometry is returned when a model file contains no geometry
// definition.
var ErrNoGeometry = errors.New("no geometry definition found")

// Face indexes the six sides of a cube.
type Face int

const (
	FaceNorth Face = iota
	FaceEast
	FaceSouth
	FaceWest
	FaceUp
	FaceDown
)

var faceNames = [...]string{"north", "east", "south", "west", "up", "down"}

func (f Face) String() string { return faceNames[f] }

// UVRect is a texture rectangle in geometry texture units. Size may be
// negative to flip the face.
type UVRect struct {
	U, V, W, H float32
}

// Quad is one textured cube face in model space. Corners run top-left,
// top-right, bottom-right, bottom-left as seen from outside the cube.
type Quad struct {
	Corners [4]mgl32.Vec3
	UV      UVRect
	Face    Face
}

// Geometry is the drawable content of a model file.
type Geometry struct {
	Identifier    string
	TextureWidth  float32
	TextureHeight float32
	Quads         []Quad
}

// geoFile covers both the 1.12+ layout ("minecraft:geometry" array) and the
// legacy layout (one "geometry.<name>" key per model).
type geoDescription struct {
	Identifier    string  `json:"identifier"`
	TextureWidth  float32 `json:"texture_width"`
	TextureHeight float32 `json:"texture_height"`
}

type geoDefinition struct {
	Description geoDescription `json:"description"`
	Bones       []geoBone      `json:"bones"`

	// Legacy fields.
	TextureWidth  float32 `json:"texturewidth"`
	TextureHeight float32 `json:"textureheight"`
}

type geoBone struct {
	Name     string     `json:"name"`
	Parent   string     `json:"parent"`
	Pivot    [3]float32 `json:"pivot"`
	Rotation [3]float32 `json:"rotation"`
	Cubes    []geoCube  `json:"cubes"`
}

type geoCube struct {
	Origin   [3]float32      `json:"origin"`
	Size     [3]float32      `json:"size"`
	Inflate  float32         `json:"inflate"`
	Pivot    *[3]float32     `json:"pivot"`
	Rotation [3]float32      `json:"rotation"`
	UV       json.RawMessage `json:"uv"`
}

type geoFaceUV struct {
	UV     [2]float32  `json:"uv"`
	UVSize *[2]float32 `json:"uv_size"`
}

// LoadGeometry reads a .geo.json file. Comments and trailing commas are
// accepted. When a file defines several geometries the first one is used.
func LoadGeometry(path string) (*Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	geo, err := ParseGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	return geo, nil
}

// ParseGeometry decodes a .geo.json document.
func ParseGeometry(data []byte) (*Geometry, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &top); err != nil {
		return nil, err
	}

	def, id, err := pickDefinition(top)
	if err != nil {
		return nil, err
	}

	geo := &Geometry{
		Identifier:    id,
		TextureWidth:  firstPositive(def.Description.TextureWidth, def.TextureWidth, defaultTextureSize),
		TextureHeight: firstPositive(def.Description.TextureHeight, def.TextureHeight, defaultTextureSize),
	}

	transforms := boneTransforms(def.Bones)
	for _, bone := range def.Bones {
		m := transforms[bone.Name]
		for _, cube := range bone.Cubes {
			quads, err := cubeQuads(cube, m)
			if err != nil {
				return nil, fmt.Errorf("bone %q: %w", bone.Name, err)
			}
			geo.Quads = append(geo.Quads, quads...)
		}
	}
	return geo, nil
}

func pickDefinition(top map[string]json.RawMessage) (*geoDefinition, string, error) {
	if raw, ok := top["minecraft:geometry"]; ok {
		var defs []geoDefinition
		if err := json.Unmarshal(raw, &defs); err != nil {
			return nil, "", fmt.Errorf("invalid minecraft:geometry: %w", err)
		}
		if len(defs) == 0 {
			return nil, "", ErrNoGeometry
		}
		return &defs[0], defs[0].Description.Identifier, nil
	}

	// Legacy files: pick the lexicographically first geometry key so the
	// choice is stable regardless of map order.
	var key string
	for k := range top {
		if strings.HasPrefix(k, "geometry.") && (key == "" || k < key) {
			key = k
		}
	}
	if key == "" {
		return nil, "", ErrNoGeometry
	}
	var def geoDefinition
	if err := json.Unmarshal(top[key], &def); err != nil {
		return nil, "", fmt.Errorf("invalid %s: %w", key, err)
	}
	return &def, key, nil
}

// Bedrock geometry is stored with the X axis mirrored relative to the
// right-handed scene space used for rendering.
func flipX(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{-v[0], v[1], v[2]}
}

func rotationAbout(pivot mgl32.Vec3, rot [3]float32) mgl32.Mat4 {
	if rot == [3]float32{} {
		return mgl32.Ident4()
	}
	r := mgl32.HomogRotate3DZ(mgl32.DegToRad(rot[2])).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(-rot[1]))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(-rot[0])))
	return mgl32.Translate3D(pivot.X(), pivot.Y(), pivot.Z()).
		Mul4(r).
		Mul4(mgl32.Translate3D(-pivot.X(), -pivot.Y(), -pivot.Z()))
}

// boneTransforms resolves each bone's model-space transform through its
// parent chain. Unknown parents and cycles end the chain.
func boneTransforms(bones []geoBone) map[string]mgl32.Mat4 {
	byName := make(map[string]geoBone, len(bones))
	for _, b := range bones {
		byName[b.Name] = b
	}

	out := make(map[string]mgl32.Mat4, len(bones))
	var resolve func(name string, depth int) mgl32.Mat4
	resolve = func(name string, depth int) mgl32.Mat4 {
		if m, ok := out[name]; ok {
			return m
		}
		b, ok := byName[name]
		if !ok || depth > len(bones) {
			return mgl32.Ident4()
		}
		m := rotationAbout(flipX(b.Pivot), b.Rotation)
		if b.Parent != "" && b.Parent != name {
			m = resolve(b.Parent, depth+1).Mul4(m)
		}
		out[name] = m
		return m
	}
	for _, b := range bones {
		resolve(b.Name, 0)
	}
	return out
}

func cubeQuads(c geoCube, bone mgl32.Mat4) ([]Quad, error) {
	size := mgl32.Vec3{c.Size[0], c.Size[1], c.Size[2]}
	// Mirror the cube's min corner along X: origin.x becomes -(origin.x + size.x).
	from := mgl32.Vec3{-(c.Origin[0] + c.Size[0]), c.Origin[1], c.Origin[2]}
	to := from.Add(size)

	inflate := mgl32.Vec3{c.Inflate, c.Inflate, c.Inflate}
	from = from.Sub(inflate)
	to = to.Add(inflate)

	m := bone
	if c.Pivot != nil {
		m = m.Mul4(rotationAbout(flipX(*c.Pivot), c.Rotation))
	}

	uvs, err := faceUVs(c.UV, c.Size)
	if err != nil {
		return nil, err
	}

	x0, y0, z0 := from.X(), from.Y(), from.Z()
	x1, y1, z1 := to.X(), to.Y(), to.Z()
	corners := [6][4]mgl32.Vec3{
		FaceNorth: {{x1, y1, z0}, {x0, y1, z0}, {x0, y0, z0}, {x1, y0, z0}},
		FaceEast:  {{x1, y1, z1}, {x1, y1, z0}, {x1, y0, z0}, {x1, y0, z1}},
		FaceSouth: {{x0, y1, z1}, {x1, y1, z1}, {x1, y0, z1}, {x0, y0, z1}},
		FaceWest:  {{x0, y1, z0}, {x0, y1, z1}, {x0, y0, z1}, {x0, y0, z0}},
		FaceUp:    {{x0, y1, z0}, {x1, y1, z0}, {x1, y1, z1}, {x0, y1, z1}},
		FaceDown:  {{x0, y0, z1}, {x1, y0, z1}, {x1, y0, z0}, {x0, y0, z0}},
	}

	quads := make([]Quad, 0, 6)
	for f := FaceNorth; f <= FaceDown; f++ {
		uv, ok := uvs[f]
		if !ok {
			continue
		}
		q := Quad{UV: uv, Face: f}
		for i, p := range corners[f] {
			q.Corners[i] = mgl32.TransformCoordinate(p, m)
		}
		quads = append(quads, q)
	}
	return quads, nil
}

// faceUVs decodes either box UV ([u, v]) or per-face UV objects. Faces
// missing from a per-face map are not drawn.
func faceUVs(raw json.RawMessage, size [3]float32) (map[Face]UVRect, error) {
	out := make(map[Face]UVRect, 6)
	trimmed := strings.TrimSpace(string(raw))

	if trimmed == "" || trimmed == "null" || strings.HasPrefix(trimmed, "[") {
		var origin [2]float32
		if trimmed != "" && trimmed != "null" {
			if err := json.Unmarshal(raw, &origin); err != nil {
				return nil, fmt.Errorf("invalid box uv: %w", err)
			}
		}
		u, v := origin[0], origin[1]
		w, h, d := size[0], size[1], size[2]
		out[FaceNorth] = UVRect{u + d, v + d, w, h}
		out[FaceEast] = UVRect{u, v + d, d, h}
		out[FaceSouth] = UVRect{u + d + w + d, v + d, w, h}
		out[FaceWest] = UVRect{u + d + w, v + d, d, h}
		out[FaceUp] = UVRect{u + d, v, w, d}
		out[FaceDown] = UVRect{u + d + w, v, w, d}
		return out, nil
	}

	var perFace map[string]geoFaceUV
	if err := json.Unmarshal(raw, &perFace); err != nil {
		return nil, fmt.Errorf("invalid per-face uv: %w", err)
	}
	for f := FaceNorth; f <= FaceDown; f++ {
		fuv, ok := perFace[f.String()]
		if !ok {
			continue
		}
		r := UVRect{U: fuv.UV[0], V: fuv.UV[1]}
		if fuv.UVSize != nil {
			r.W, r.H = fuv.UVSize[0], fuv.UVSize[1]
		}
		out[f] = r
	}
	return out, nil
}

func firstPositive(vals ...float32) float32 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
