package placement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownStrategy is returned by ParseKind
var ErrUnknownStrategy = errors.New("unknown placement strategy")

// Kind names a strategy in configuration.
type Kind string

const (
	KindAuto   Kind = "auto"
	KindLine   Kind = "line"
	KindLShape Kind = "lshape"
	KindCross  Kind = "cross"
	KindXShape Kind = "xshape"
)

// Kinds lists every strategy kind in display order.
var Kinds = []Kind{KindAuto, KindLine, KindLShape, KindCross, KindXShape}

// aliases accepted on top of the canonical names
var kindAliases = map[string]Kind{
	"l-shape": KindLShape,
	"l":       KindLShape,
	"x-shape": KindXShape,
	"x":       KindXShape,
	"plus":    KindCross,
}

// suggestion distance above which no "did you mean" is offered
const maxSuggestionDistance = 3

// ParseKind maps a configured name to a Kind. Unknown names fail with the
// closest known name as a hint.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds {
		if n == string(k) {
			return k, nil
		}
	}
	if k, ok := kindAliases[n]; ok {
		return k, nil
	}

	best, bestDist := "", maxSuggestionDistance+1
	for _, k := range Kinds {
		if d := levenshtein.ComputeDistance(n, string(k)); d < bestDist {
			best, bestDist = string(k), d
		}
	}
	if best != "" {
		return "", fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownStrategy, name, best)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// New builds the strategy of the given kind.
func New(kind Kind, maxTraps int, opts ...Option) (Strategy, error) {
	switch kind {
	case KindAuto:
		s, err := NewAuto(maxTraps, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindLine:
		s, err := NewLine(maxTraps, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindLShape:
		s, err := NewLShape(maxTraps, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindCross:
		s, err := NewCross(maxTraps, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindXShape:
		s, err := NewXShape(maxTraps, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, kind)
	}
}
