// Package fontindex maps characters to the fonts able to render them.
//
// An Index is built once from a directory tree of TrueType and OpenType
// files. Building reads each font's cmap through go-text/typesetting
// (no rasterization) and records, for every covered rune, the fonts that
// carry a real glyph for it. Fonts live in an arena addressed by FontID;
// IDs are assigned in rank order (main fonts in listed order, then
// fallback fonts in listed order, then every other discovered font), so
// lookups return candidates already sorted by preference.
//
// The Index is read-only after Build and safe for concurrent use.
package fontindex
