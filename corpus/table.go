package corpus

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/gogpu/textsynth/fontindex"
	"github.com/gogpu/textsynth/internal/errkind"
)

// Coverage resolves a character to the fonts that render it.
// *fontindex.Index implements it.
type Coverage interface {
	Lookup(ch string) ([]fontindex.Record, error)
}

// Entry is one line of a frequency table.
type Entry struct {
	Char   string
	Weight float64
}

// Table is a WeightedCharacterTable: characters with sampling weights and
// the font bindings resolved for them at construction.
//
// Characters that no font covers never enter the table, so every
// character a Table returns can be rendered. Table is immutable.
type Table struct {
	class    Class
	bindings []fontindex.Binding
	weights  []float64
	position map[string]int
	sampler  alias
	dropped  []string
}

// NewTable resolves every entry through cov and builds the alias sampler.
// Duplicate characters keep their first weight. Entries without coverage
// are dropped and reported through Dropped. A table left empty is a
// configuration error.
func NewTable(class Class, entries []Entry, cov Coverage, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Table{class: class, position: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := t.position[e.Char]; dup {
			continue
		}
		if !(e.Weight > 0) || math.IsInf(e.Weight, 1) {
			return nil, fmt.Errorf("corpus: %s table: weight %v for %q: %w", class, e.Weight, e.Char, errkind.Configuration)
		}
		fonts, err := cov.Lookup(e.Char)
		if err != nil {
			t.dropped = append(t.dropped, e.Char)
			continue
		}
		t.position[e.Char] = len(t.bindings)
		t.bindings = append(t.bindings, fontindex.Binding{Char: e.Char, Fonts: fonts})
		t.weights = append(t.weights, e.Weight)
	}
	if len(t.dropped) > 0 {
		logger.Warn("corpus: characters without coverage dropped",
			"table", class.String(), "count", len(t.dropped))
	}
	if len(t.bindings) == 0 {
		return nil, fmt.Errorf("corpus: %s table has no renderable characters: %w", class, errkind.Configuration)
	}
	t.sampler = newAlias(t.weights)
	logger.Info("corpus: table ready", "table", class.String(), "chars", len(t.bindings))
	return t, nil
}

// Class returns the class the table serves.
func (t *Table) Class() Class { return t.class }

// Len returns the number of characters in the table.
func (t *Table) Len() int { return len(t.bindings) }

// Dropped returns the characters rejected for lack of coverage.
func (t *Table) Dropped() []string { return append([]string(nil), t.dropped...) }

// Lookup returns the font bindings of ch.
func (t *Table) Lookup(ch string) ([]fontindex.Record, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.position[ch]
	if !ok {
		return nil, false
	}
	return t.bindings[i].Fonts, true
}

// Weight returns the sampling weight of ch, or 0 if absent.
func (t *Table) Weight(ch string) float64 {
	if i, ok := t.position[ch]; ok {
		return t.weights[i]
	}
	return 0
}

// Chars returns the characters in table order.
func (t *Table) Chars() []string {
	out := make([]string, len(t.bindings))
	for i, b := range t.bindings {
		out[i] = b.Char
	}
	return out
}

// Sample draws one character with probability proportional to its weight.
func (t *Table) Sample(rng *rand.Rand) fontindex.Binding {
	return t.bindings[t.sampler.sample(rng)]
}

// alias is a Walker/Vose alias table: O(n) to build, O(1) per draw.
type alias struct {
	prob  []float64
	alias []int
}

func newAlias(weights []float64) alias {
	n := len(weights)
	a := alias{prob: make([]float64, n), alias: make([]int, n)}

	var sum float64
	for _, w := range weights {
		sum += w
	}
	scaled := make([]float64, n)
	var small, large []int
	for i, w := range weights {
		scaled[i] = w * float64(n) / sum
		if scaled[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		a.prob[s] = scaled[s]
		a.alias[s] = l
		scaled[l] += scaled[s] - 1
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	for _, i := range large {
		a.prob[i] = 1
		a.alias[i] = i
	}
	// Leftovers here are rounding residue.
	for _, i := range small {
		a.prob[i] = 1
		a.alias[i] = i
	}
	return a
}

func (a alias) sample(rng *rand.Rand) int {
	i := rng.IntN(len(a.prob))
	if rng.Float64() < a.prob[i] {
		return i
	}
	return a.alias[i]
}
