package service

import "errors"

// Validation errors for match entry. The rating engine itself never rejects
// input; everything below is checked here at the boundary.
var (
	ErrTiedScore        = errors.New("scores must not be equal")
	ErrScoreOutOfRange  = errors.New("scores must be between 0 and 7")
	ErrDuplicatePlayers = errors.New("the four players must be distinct")
	ErrAdminDisabled    = errors.New("admin operations are disabled")
)
