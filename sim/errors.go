package sim

import "errors"

// Sentinel errors for recoverable, user-triggerable failure conditions.
// Checked with errors.Is at call sites; none of these ever terminate the
// process. Programmer errors (nil graph, out-of-range Kind) are bugs and
// panic instead.
var (
	ErrUnknownIncident = errors.New("sim: unknown incident")
	ErrUnknownEdge     = errors.New("sim: unknown edge")
	ErrNoPath          = errors.New("sim: no path")
	ErrEmptyGraph      = errors.New("sim: empty graph")
	ErrDuplicateBlock  = errors.New("sim: edge already blocked")
)
