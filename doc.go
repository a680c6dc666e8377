// Package textsynth generates labeled synthetic text-line images for
// training character recognition models.
//
// A Generator samples or accepts text, binds every character to the fonts
// that can draw it, renders the line, blends it onto a background with a
// Poisson solve and optionally degrades the result with random effects.
// Rare ideographs are spread over many font files, so each character may
// be drawn with a different font.
//
// # Quick Start
//
//	cfg, err := textsynth.LoadConfig("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g, err := textsynth.NewGenerator(cfg, textsynth.WithSeed(1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	segs, _ := g.RandomChinese(5, 10, false)
//	img, _ := g.GenImageFromTextWithFontList(segs, textsynth.Black, textsynth.White, true)
//	_ = img.SavePNG("sample.png")
//
// # Concurrency
//
// A Generator owns a random source and is not safe for concurrent use.
// Fork returns an independent Generator sharing the immutable font index,
// tables and background images, one per worker.
package textsynth
