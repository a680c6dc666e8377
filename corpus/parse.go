package corpus

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/gogpu/textsynth/internal/errkind"
)

// ParseError reports a malformed line in a character list.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("corpus: line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *ParseError) Unwrap() error { return errkind.Configuration }

// ParseFrequencies reads a tab-separated frequency table: one
// "character<TAB>weight" pair per line. Blank lines are skipped. A line
// without a tab, a character that is not exactly one grapheme cluster, or a
// weight that is not a positive finite number is a *ParseError.
func ParseFrequencies(r io.Reader) ([]Entry, error) {
	var out []Entry
	err := eachLine(r, func(n int, line string) error {
		ch, weight, ok := strings.Cut(line, "\t")
		if !ok {
			return &ParseError{Line: n, Text: line, Reason: "missing tab separator"}
		}
		ch = norm.NFC.String(strings.TrimSpace(ch))
		if len(Graphemes(ch)) != 1 {
			return &ParseError{Line: n, Text: line, Reason: "expected a single character"}
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil || !(w > 0) || math.IsInf(w, 0) {
			return &ParseError{Line: n, Text: line, Reason: "weight must be a positive number"}
		}
		out = append(out, Entry{Char: ch, Weight: w})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseSymbols reads one symbol per line, each weighted 1. Fullwidth and
// halfwidth variants are kept as written; blank lines are skipped.
func ParseSymbols(r io.Reader) ([]Entry, error) {
	var out []Entry
	err := eachLine(r, func(n int, line string) error {
		ch := norm.NFC.String(strings.TrimSpace(line))
		if len(Graphemes(ch)) != 1 {
			return &ParseError{Line: n, Text: line, Reason: "expected a single symbol"}
		}
		out = append(out, Entry{Char: ch, Weight: 1})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LatinEntries returns the distinct grapheme clusters of a free-text corpus,
// each weighted by its number of occurrences, in first-seen order. Line
// breaks and other control characters are not entries.
func LatinEntries(text string) []Entry {
	index := make(map[string]int)
	var out []Entry
	for _, g := range Graphemes(text) {
		if isControl(g) {
			continue
		}
		if i, ok := index[g]; ok {
			out[i].Weight++
			continue
		}
		index[g] = len(out)
		out = append(out, Entry{Char: g, Weight: 1})
	}
	return out
}

// Fold maps fullwidth and halfwidth forms in s to their canonical width,
// turning "ＡＢ１" into "AB1". Callers fold whole input texts before
// binding; tables never fold on lookup.
func Fold(s string) string {
	return width.Fold.String(s)
}

func isControl(g string) bool {
	for _, r := range g {
		if r >= 0x20 && r != 0x7f {
			return false
		}
	}
	return true
}

func eachLine(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if n == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("corpus: read: %w: %w", errkind.Configuration, err)
	}
	return nil
}
