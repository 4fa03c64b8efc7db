package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Log is a notification emitted by a contract. Logs emitted inside a reverted
// frame are discarded together with its state changes.
type Log struct {
	Address common.Address
	Event   interface{}

	// Index of the log within its transaction, set on commit.
	Index uint
}

func (l *Log) String() string {
	return fmt.Sprintf("log{address=%s index=%d event=%T}", l.Address.Hex(), l.Index, l.Event)
}

// Receipt is the outcome of a committed transaction.
type Receipt struct {
	From common.Address
	To   common.Address
	Logs []*Log
}

// FindEvent returns the first event of type T in the receipt.
func FindEvent[T any](r *Receipt) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	for _, l := range r.Logs {
		if ev, ok := l.Event.(T); ok {
			return ev, true
		}
	}
	return zero, false
}
