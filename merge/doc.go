// Package merge composites rendered text onto background images.
//
// The Engine scales and pads a text line to the background size, then
// blends it with a Poisson (gradient domain) solve so the text inherits
// the background's illumination and leaves no seam at the mask border.
package merge
