// Package software is a CPU implementation of the render port. It draws the
// cubes of a Bedrock .geo.json model with an orthographic camera, a depth
// buffer and nearest-neighbor texture sampling.
//
// It covers what icon rendering needs: bones with pivots and rotations,
// cube rotations, inflate, box UV and per-face UV. Mirroring, locators,
// polygon meshes and animations are ignored.
package software
