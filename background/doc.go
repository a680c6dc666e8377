// Package background supplies randomly cropped background images.
//
// A Factory loads every PNG and JPEG file of one directory at
// construction and keeps their encoded bytes; all file I/O happens there.
// Random then decodes one image, upscales it when it is smaller than the
// target size and returns a random crop of exactly that size.
package background
