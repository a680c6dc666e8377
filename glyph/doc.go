// Package glyph turns text into rendered text lines.
//
// A Resolver binds each grapheme of a string to the fonts able to draw it.
// A Selector picks one font per grapheme, and a Rasterizer draws the
// resulting runs onto a single-line canvas.
package glyph
