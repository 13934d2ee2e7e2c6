package domain

import "errors"

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")

	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientEarnings = errors.New("insufficient earnings")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrGiftNotFound         = errors.New("gift not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrJoinDenied           = errors.New("join denied")
	ErrSelfFollow           = errors.New("cannot follow yourself")
	ErrConcurrencyConflict  = errors.New("concurrency conflict")
	ErrNotInRoom            = errors.New("not in room")
	ErrRateLimited          = errors.New("rate limited")
	ErrEmptyMessage         = errors.New("empty message")

	ErrBattleActive = errors.New("battle already active")
	ErrNoBattle     = errors.New("no active battle")
	ErrSameRoom     = errors.New("battle needs two different rooms")
	ErrInvalidSide  = errors.New("invalid team")
)

var sentinels = []error{
	ErrUsernameTooLong, ErrUsernameEmpty,
	ErrInsufficientFunds, ErrInsufficientEarnings, ErrInvalidAmount, ErrInvalidQuantity,
	ErrGiftNotFound, ErrRoomNotFound, ErrUserNotFound, ErrUserExists,
	ErrUnauthorized, ErrJoinDenied, ErrSelfFollow, ErrConcurrencyConflict,
	ErrNotInRoom, ErrRateLimited, ErrEmptyMessage,
	ErrBattleActive, ErrNoBattle, ErrSameRoom, ErrInvalidSide,
}

// IsDomain reports whether err wraps one of the errors above. Anything
// else is internal and must not reach a client verbatim.
func IsDomain(err error) bool {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
