// Package corpus samples the text drawn on each generated line.
//
// Characters are split into Han, symbol and other classes (Classify).
// ParseFrequencies and ParseSymbols read the corpus files into Entries,
// and a Tables value keeps one weighted table per class, each filtered to
// the characters some indexed font covers. Resolve looks a grapheme up
// exactly as written; full-width and half-width variants are different
// characters and are never substituted. Callers that want width folding
// apply Fold to the whole text before lookup.
//
// A Sampler draws random strings from the tables. Its random stream comes
// from WithSeed or WithRand, and Fork hands a worker its own stream over
// the same read-only tables.
package corpus
