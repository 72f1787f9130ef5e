package ws

import (
	"errors"

	"flappy-casino/internal/game"
	"flappy-casino/internal/ledger"
)

// reasons whose text is sent to the client as is
var knownReasons = []error{
	game.ErrWrongPhase,
	game.ErrNotYourTurn,
	game.ErrAlreadyFolded,
	game.ErrRaiseTooSmall,
	game.ErrRaiseExceedsStack,
	game.ErrInvalidAction,
	game.ErrInvalidAmount,
	game.ErrTableFull,
	game.ErrNotJoined,
	game.ErrNotSeated,
	game.ErrNotObserver,
	game.ErrAlreadyAtTable,
	game.ErrNoChips,
	game.ErrServer,
	ledger.ErrInsufficientFunds,
	ledger.ErrInvalidCredentials,
	errInvalidMessage,
	errInvalidRequestID,
}

func mapError(err error) string {
	if err == nil {
		return ""
	}
	for _, known := range knownReasons {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return game.ErrServer.Error()
}
