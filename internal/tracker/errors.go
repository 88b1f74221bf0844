package tracker

import (
	"errors"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/parser"
)

var (
	// ErrConflict indicates the request clashes with current state, such as
	// clocking in while already clocked in.
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates the tracker, item or task is missing or belongs
	// to another user.
	ErrNotFound = db.ErrNotFound
	// ErrValidation indicates malformed input.
	ErrValidation = parser.ErrValidation
)
