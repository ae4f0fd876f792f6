// Package texture discovers and loads the texture files that belong to a
// model.
//
// A model can be paired with textures through three naming conventions,
// all of which may contribute at once:
//   - a direct match: <textures>/<model>.png
//   - a subfolder of variants: <textures>/<model>/*.png
//   - numbered variants: <textures>/<model>2.png, <model>3.png, ...
//
// Each discovered texture becomes one icon. A model with no texture at all
// is still rendered once, untextured.
package texture
