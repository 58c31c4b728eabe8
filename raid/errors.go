package raid

import "errors"

var (
	ErrWrongPhase   = errors.New("wrong phase")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrRoomClosed         = errors.New("room closed")
	ErrSlowConsumer       = errors.New("outbound buffer full")
	ErrConnectionReleased = errors.New("connection released")
)
