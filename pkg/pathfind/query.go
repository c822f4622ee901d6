// Package pathfind runs shortest-trail queries against a graph store and returns their results as
// a lazy row iterator.
package pathfind

import (
	"errors"
	"fmt"

	"github.com/natefinch/wrap"

	"github.com/openfga/ppbfs/pkg/automaton"
)

var (
	// ErrInvalidQuery is returned by Execute for a query that cannot run.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnknownNode is returned by Execute when the source or target node does not exist.
	ErrUnknownNode = errors.New("unknown node")
)

// Mode selects what K counts.
type Mode int

const (
	// Paths returns up to K paths per target.
	Paths Mode = iota
	// Groups returns every path of the K shortest lengths per target.
	Groups
)

func (m Mode) String() string {
	if m == Groups {
		return "groups"
	}
	return "paths"
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "paths", "":
		return Paths, nil
	case "groups":
		return Groups, nil
	}
	return 0, wrap.With(fmt.Errorf("unknown mode %q", s), ErrInvalidQuery)
}

// SearchMode selects the direction of the search.
type SearchMode int

const (
	Unidirectional SearchMode = iota
	// Bidirectional also searches backward from the target. It requires a target.
	Bidirectional
)

func (s SearchMode) String() string {
	if s == Bidirectional {
		return "bidirectional"
	}
	return "unidirectional"
}

func ParseSearchMode(s string) (SearchMode, error) {
	switch s {
	case "unidirectional", "":
		return Unidirectional, nil
	case "bidirectional":
		return Bidirectional, nil
	}
	return 0, wrap.With(fmt.Errorf("unknown search mode %q", s), ErrInvalidQuery)
}

// Query asks for the shortest trails from Source matching Automaton. When Target is nil every
// node reached in a final state is a target.
type Query struct {
	Source    int64
	Target    *int64
	Automaton *automaton.Automaton
	// K is the number of paths, or groups, per target. Zero means one.
	K      int
	Mode   Mode
	Search SearchMode
}

// Validate reports whether q can run.
func (q Query) Validate() error {
	if q.Automaton == nil {
		return wrap.With(errors.New("missing automaton"), ErrInvalidQuery)
	}
	if q.K < 0 {
		return wrap.With(fmt.Errorf("k must not be negative, got %d", q.K), ErrInvalidQuery)
	}
	if q.Search == Bidirectional && q.Target == nil {
		return wrap.With(errors.New("a bidirectional search needs a target"), ErrInvalidQuery)
	}
	return nil
}

func (q Query) k() int {
	if q.K == 0 {
		return 1
	}
	return q.K
}
