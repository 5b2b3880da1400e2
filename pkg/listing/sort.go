package listing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrUnknownSortKey is returned when a sort key has no comparator.
var ErrUnknownSortKey = errors.New("unknown sort key")

// Comparators maps sort keys to ascending comparators.
type Comparators[T any] map[string]func(a, b T) int

// Keys returns the supported sort keys in lexical order.
func (c Comparators[T]) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SortState is the active sort column and direction.
type SortState struct {
	Key  string
	Desc bool
}

// Toggle returns the next state after selecting key: the same key flips the
// direction, a different key starts ascending.
func (s SortState) Toggle(key string) SortState {
	if key == "" {
		return s
	}
	if s.Key == key {
		return SortState{Key: key, Desc: !s.Desc}
	}
	return SortState{Key: key}
}

// Direction returns "asc" or "desc".
func (s SortState) Direction() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// String encodes the state as "key:dir", or "" when unsorted.
func (s SortState) String() string {
	if s.Key == "" {
		return ""
	}
	return s.Key + ":" + s.Direction()
}

// ParseSortState decodes "key:dir" (direction optional, defaults to ascending).
func ParseSortState(raw string) (SortState, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortState{}, nil
	}
	key, dir, _ := strings.Cut(raw, ":")
	desc, err := parseDirection(dir)
	if err != nil {
		return SortState{}, err
	}
	return SortState{Key: strings.TrimSpace(key), Desc: desc}, nil
}

func parseDirection(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, fmt.Errorf("invalid sort direction %q", raw)
	}
}

// Sort returns a stably sorted copy. Ties keep their filtered order in both
// directions, so descending is the exact reverse of ascending for distinct keys.
func Sort[T any](rows []T, state SortState, comparators Comparators[T]) ([]T, error) {
	out := slices.Clone(rows)
	if out == nil {
		out = []T{}
	}
	if state.Key == "" {
		return out, nil
	}
	compare, ok := comparators[state.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSortKey, state.Key)
	}
	if state.Desc {
		slices.SortStableFunc(out, func(a, b T) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out, nil
}

// ByString builds a case-insensitive comparator over a string field.
func ByString[T any](field func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// ByOrdered builds a comparator over an ordered field.
func ByOrdered[T any, V cmp.Ordered](field func(T) V) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(field(a), field(b))
	}
}

// ByTime builds a chronological comparator.
func ByTime[T any](field func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		return field(a).Compare(field(b))
	}
}
