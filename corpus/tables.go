package corpus

import (
	"fmt"

	"github.com/gogpu/textsynth/fontindex"
	"github.com/gogpu/textsynth/internal/errkind"
)

// Tables holds one WeightedCharacterTable per class.
type Tables struct {
	byClass [classCount]*Table
}

// NewTables groups tables by their class. The ideograph table is required;
// Latin and symbol tables are optional. Two tables of one class are an error.
func NewTables(tables ...*Table) (*Tables, error) {
	ts := &Tables{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if ts.byClass[t.class] != nil {
			return nil, fmt.Errorf("corpus: duplicate %s table: %w", t.class, errkind.Configuration)
		}
		ts.byClass[t.class] = t
	}
	if ts.byClass[Ideograph] == nil {
		return nil, fmt.Errorf("corpus: ideograph table is required: %w", errkind.Configuration)
	}
	return ts, nil
}

// For returns the table of class c, or nil if none was configured.
func (ts *Tables) For(c Class) *Table {
	if c >= classCount {
		return nil
	}
	return ts.byClass[c]
}

// Resolve returns the font bindings of ch. The table of the character's own
// class is consulted first, then the remaining tables in class order. ok is
// false whenever ch is absent from every table; variant forms are not
// substituted, since their fonts need not cover ch.
func (ts *Tables) Resolve(ch string) ([]fontindex.Record, bool) {
	own := Classify(ch)
	if fonts, ok := ts.byClass[own].Lookup(ch); ok {
		return fonts, true
	}
	for _, c := range Classes {
		if c == own {
			continue
		}
		if fonts, ok := ts.byClass[c].Lookup(ch); ok {
			return fonts, true
		}
	}
	return nil, false
}
