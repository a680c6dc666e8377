// Package cache provides a small generic LRU cache.
//
// The rasterizer keeps one parsed face per font it has drawn with; a rare
// character corpus can touch thousands of font files, so the face cache is
// bounded and evicts the least recently used face.
package cache
