package model

import "errors"

// Common errors used across the application
var (
	// Role panel errors
	ErrBindingNotFound = errors.New("no role panel binding stored")
	ErrUnknownControl  = errors.New("control has no registered action")

	// Round errors
	ErrNoCandidates = errors.New("no eligible rounds available")
	ErrNoQuestions  = errors.New("no trivia questions loaded")

	// Link errors
	ErrLinkNotFound = errors.New("no linked account")
)
