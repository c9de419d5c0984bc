package types

import "errors"

// Contact form, quiz and preference errors.
var (
	ErrInvalidForm     = errors.New("contact form is invalid")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotAnswered     = errors.New("question not answered yet")
	ErrQuizFinished    = errors.New("quiz is finished")
	ErrUnknownOption   = errors.New("option is not one of the choices")
	ErrUnknownTheme    = errors.New("unknown theme")
)
