package engine

import "errors"

// ErrInvalid marks a rejected action: malformed payload, wrong action type
// for the current state, a rule violation, or a duplicate vote. The game is
// left untouched.
var ErrInvalid = errors.New("invalid action")

// ErrConflict marks an action that is well-formed but arrives while the game
// is in the wrong status for it.
var ErrConflict = errors.New("conflicting action")
