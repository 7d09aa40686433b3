package cashier

import "errors"

var (
	ErrSessionNotFound    = errors.New("cash session not found")
	ErrSessionAlreadyOpen = errors.New("operator already has an open session")
	ErrSessionClosed      = errors.New("cash session is closed")
	ErrInvalidAmount      = errors.New("movement amount must be greater than zero")
	ErrInvalidKind        = errors.New("movement kind not allowed here")
)
