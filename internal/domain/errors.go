package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource conflict")
	ErrNoProfile        = errors.New("sleep profile not yet created")
	ErrNoPrescription   = errors.New("no active prescription")
	ErrDuplicateRequest = errors.New("duplicate client request")
	ErrInvalidInput     = errors.New("invalid input")
)
