package core

import "errors"

var (
	ErrEmptyInput     = errors.New("empty input")
	ErrMissingColumn  = errors.New("missing required column")
	ErrDuplicateField = errors.New("duplicate column")
)
