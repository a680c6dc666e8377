// Package effect degrades text images with randomized visual effects.
//
// A Pipeline is an ordered list of stages, each a probability paired with
// a transform. Apply decides which stages fire before running any of
// them, so the gate draws never depend on what earlier transforms drew,
// and the order of the stages never changes. Every transform is also
// exported on its own.
package effect
