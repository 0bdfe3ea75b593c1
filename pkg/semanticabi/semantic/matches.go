package semantic

import (
	"fmt"
	"math/big"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
)

// MatchItemType is what kind of thing a `@matches` entry pairs a primary item against.
type MatchItemType string

const (
	MatchEvent    MatchItemType = "event"
	MatchFunction MatchItemType = "function"
	MatchTransfer MatchItemType = "transfer"
)

// AssertType controls how many of the matched sibling rows a `@matches` entry expects to find
// for a given primary row.
type AssertType string

const (
	// AssertOnlyOne requires exactly one match; zero or more than one is a TransformError.
	AssertOnlyOne AssertType = "onlyOne"
	// AssertMany allows any number of matches, each becoming its own output row (at most one
	// `@matches` entry per item may assert MANY).
	AssertMany AssertType = "many"
	// AssertOptionalOne allows zero or one match; zero fills the matched columns with nil.
	AssertOptionalOne AssertType = "optionalOne"
)

func ParseAssertType(s string) (AssertType, error) {
	switch AssertType(s) {
	case AssertOnlyOne, AssertMany, AssertOptionalOne:
		return AssertType(s), nil
	}
	return "", abierr.New("unknown assert type %q", s)
}

// MatchType decides whether an already-transformed source row and a candidate matched row
// should be joined together.
type MatchType interface {
	Matches(sourceRow, matchedRow map[string]any) bool
	SourceColumnNames() []string
	MatchedColumnNames() []string
}

// EqualMatch joins rows whose named columns hold the same value.
type EqualMatch struct {
	Source  string
	Matched string
}

func (m EqualMatch) Matches(sourceRow, matchedRow map[string]any) bool {
	return fmt.Sprintf("%v", sourceRow[m.Source]) == fmt.Sprintf("%v", matchedRow[m.Matched])
}

func (m EqualMatch) SourceColumnNames() []string  { return []string{m.Source} }
func (m EqualMatch) MatchedColumnNames() []string { return []string{m.Matched} }

// BoundMatch joins rows where the matched column's value falls within [lower, upper] fractions
// of the source column's value, e.g. a partial fill matched against an order within 95%-105% of
// its quoted size.
type BoundMatch struct {
	Source  string
	Matched string
	Lower   *float64
	Upper   *float64
}

func newBoundMatch(source, matched string, lower, upper *float64) (BoundMatch, error) {
	if lower == nil && upper == nil {
		return BoundMatch{}, abierr.New("bound match must specify at least one of \"lower\" or \"upper\"")
	}
	if lower != nil && upper != nil && *lower > *upper {
		return BoundMatch{}, abierr.New("bound match \"lower\" must be less than \"upper\"")
	}
	return BoundMatch{Source: source, Matched: matched, Lower: lower, Upper: upper}, nil
}

func (m BoundMatch) Matches(sourceRow, matchedRow map[string]any) bool {
	value, ok := toFloat(sourceRow[m.Source])
	if !ok {
		return false
	}
	matchedValue, ok := toFloat(matchedRow[m.Matched])
	if !ok {
		return false
	}

	if m.Lower != nil && matchedValue < *m.Lower*value {
		return false
	}
	if m.Upper != nil && matchedValue > *m.Upper*value {
		return false
	}
	return true
}

func (m BoundMatch) SourceColumnNames() []string  { return []string{m.Source} }
func (m BoundMatch) MatchedColumnNames() []string { return []string{m.Matched} }

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, true
	default:
		return 0, false
	}
}

// ExactInSetMatch joins a source row to a matched row if the source column's value equals the
// value of any one of several candidate matched columns.
type ExactInSetMatch struct {
	Source  string
	Matched []string
}

func (m ExactInSetMatch) Matches(sourceRow, matchedRow map[string]any) bool {
	value := fmt.Sprintf("%v", sourceRow[m.Source])
	for _, matchedColumn := range m.Matched {
		if fmt.Sprintf("%v", matchedRow[matchedColumn]) == value {
			return true
		}
	}
	return false
}

func (m ExactInSetMatch) SourceColumnNames() []string  { return []string{m.Source} }
func (m ExactInSetMatch) MatchedColumnNames() []string { return m.Matched }

// PredicateJSON is one entry of a `@matches` entry's `predicates` list.
type PredicateJSON struct {
	Type    string   `json:"type"`
	Source  string   `json:"source"`
	Matched any      `json:"matched"`
	Lower   *float64 `json:"lower,omitempty"`
	Upper   *float64 `json:"upper,omitempty"`
}

func predicateFromJSON(j PredicateJSON) (MatchType, error) {
	switch j.Type {
	case "equal":
		matched, ok := j.Matched.(string)
		if !ok {
			return nil, abierr.New("equal predicate \"matched\" must be a column name")
		}
		return EqualMatch{Source: j.Source, Matched: matched}, nil
	case "bound":
		matched, ok := j.Matched.(string)
		if !ok {
			return nil, abierr.New("bound predicate \"matched\" must be a column name")
		}
		return newBoundMatch(j.Source, matched, j.Lower, j.Upper)
	case "in":
		raw, ok := j.Matched.([]any)
		if !ok {
			return nil, abierr.New("in predicate \"matched\" must be a list of column names")
		}
		matched := make([]string, 0, len(raw))
		for _, el := range raw {
			name, ok := el.(string)
			if !ok {
				return nil, abierr.New("in predicate \"matched\" must be a list of column names")
			}
			matched = append(matched, name)
		}
		return ExactInSetMatch{Source: j.Source, Matched: matched}, nil
	default:
		return nil, abierr.New("unknown predicate type %q", j.Type)
	}
}

// Match is one `@matches` entry: a reference to another item (by signature, for events and
// functions) or to the token-transfer pseudo-item, a set of join predicates deciding which
// candidate rows qualify, an assertion about how many matching rows are expected, and a column
// prefix every joined column gets grafted in under.
type Match struct {
	ItemType   MatchItemType
	Signature  string
	Prefix     string
	AssertType AssertType
	Predicates []MatchType
}

// MatchJSON is the wire shape of one `@matches` entry.
type MatchJSON struct {
	Type       string          `json:"type"`
	Signature  string          `json:"signature,omitempty"`
	Prefix     string          `json:"prefix"`
	Assert     string          `json:"assert"`
	Predicates []PredicateJSON `json:"predicates"`
}

func MatchFromJSON(j MatchJSON) (*Match, error) {
	var itemType MatchItemType
	switch j.Type {
	case "event":
		itemType = MatchEvent
	case "function":
		itemType = MatchFunction
	case "transfer":
		itemType = MatchTransfer
	default:
		return nil, abierr.New("unknown @matches type %q", j.Type)
	}

	assertType, err := ParseAssertType(j.Assert)
	if err != nil {
		return nil, err
	}

	if itemType != MatchTransfer && j.Signature == "" {
		return nil, abierr.New("@matches entry must specify \"signature\" unless it is a \"transfer\" match")
	}

	predicates := make([]MatchType, 0, len(j.Predicates))
	for _, p := range j.Predicates {
		predicate, err := predicateFromJSON(p)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, predicate)
	}

	return &Match{
		ItemType:   itemType,
		Signature:  j.Signature,
		Prefix:     j.Prefix,
		AssertType: assertType,
		Predicates: predicates,
	}, nil
}

// MakePrefixedColumnName applies this match's column-name prefix to a matched column's name,
// so that two `@matches` entries against the same signature don't collide in the output schema.
func (m *Match) MakePrefixedColumnName(columnName string) string {
	return m.Prefix + "_" + columnName
}

// Matches is the validated, ordered list of a primary item's `@matches` entries.
type Matches struct {
	entries []*Match
}

// MatchesFromJSON validates that at most one entry asserts MANY, and that no two entries sharing
// a signature also share a prefix.
func MatchesFromJSON(elements []MatchJSON) (*Matches, error) {
	entries := make([]*Match, 0, len(elements))
	manyCount := 0
	seenPrefixBySignature := map[string]map[string]bool{}

	for _, el := range elements {
		m, err := MatchFromJSON(el)
		if err != nil {
			return nil, err
		}
		if m.AssertType == AssertMany {
			manyCount++
		}

		if m.Signature != "" {
			seen := seenPrefixBySignature[m.Signature]
			if seen == nil {
				seen = map[string]bool{}
				seenPrefixBySignature[m.Signature] = seen
			}
			if seen[m.Prefix] {
				return nil, abierr.New("duplicate @matches prefix %q for signature %q", m.Prefix, m.Signature)
			}
			seen[m.Prefix] = true
		}

		entries = append(entries, m)
	}

	if manyCount > 1 {
		return nil, abierr.New("at most one @matches entry may assert MANY, found %d", manyCount)
	}

	return &Matches{entries: entries}, nil
}

func (m *Matches) All() []*Match { return m.entries }

// HasMany reports whether one of this item's matches asserts MANY (and so can fan a single
// primary row out into multiple output rows).
func (m *Matches) HasMany() bool {
	for _, entry := range m.entries {
		if entry.AssertType == AssertMany {
			return true
		}
	}
	return false
}
