// Package icon turns a rendered frame into a square icon.
//
// A frame is expected to have a transparent background. Processing scans
// the frame for its content bounds, crops to them with a small margin,
// centers the crop in a transparent square and resamples the square to the
// icon size with nearest-neighbor filtering so pixel-art edges stay hard.
package icon
