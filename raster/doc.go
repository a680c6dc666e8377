// Package raster provides the row-major pixel buffer shared by every stage
// of the text image pipeline.
//
// An Image stores 8-bit samples in a contiguous slice with no row padding,
// so Pix() can be handed to callers as-is: RGB8 images are laid out as
// height x width x 3 and Gray8 images as height x width.
package raster
