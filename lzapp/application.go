package lzapp

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
)

// Application is the user logic behind an application contract. Receive
// runs as the application contract and is only ever handed admitted
// messages. A non-nil error means the message was not applied, and every
// state change made by Receive is reverted.
//
// The frame handed to Receive stores into its own namespace, see
// ApplicationKey, and cannot reach the owner, trusted remotes or failed
// messages of the contract through Get and Set.
type Application interface {
	Receive(f *host.Frame, msg *types.Message) error
}

// ApplicationFunc adapts a function to the Application interface.
type ApplicationFunc func(f *host.Frame, msg *types.Message) error

func (fn ApplicationFunc) Receive(f *host.Frame, msg *types.Message) error {
	return fn(f, msg)
}

var (
	inboxRevertKey = []byte("ib/revert")
	inboxCountKey  = []byte("ib/count")
)

// Inbox accepts every message and counts them. It can be switched to
// reject every message, which exercises the failure paths of the receiver.
type Inbox struct{}

// SetRevertOnReceive switches the inbox of the calling frame's contract
// between accepting and rejecting messages. It runs as a transaction into
// the application contract.
func (Inbox) SetRevertOnReceive(f *host.Frame, revert bool) error {
	f = f.Namespace(applicationPrefix)
	if revert {
		f.Set(inboxRevertKey, []byte{1})
	} else {
		f.Set(inboxRevertKey, nil)
	}
	return nil
}

// RevertOnReceive reports whether the inbox of app rejects messages.
func (Inbox) RevertOnReceive(r state.Reader, app common.Address) bool {
	return len(r.GetState(app, ApplicationKey(inboxRevertKey))) > 0
}

// Count returns the number of messages the inbox of app has accepted.
func (Inbox) Count(r state.Reader, app common.Address) uint64 {
	return decodeCount(r.GetState(app, ApplicationKey(inboxCountKey)))
}

func (Inbox) Receive(f *host.Frame, msg *types.Message) error {
	if len(f.Get(inboxRevertKey)) > 0 {
		return host.Revert("revertOnReceive")
	}
	n := decodeCount(f.Get(inboxCountKey))
	f.Set(inboxCountKey, binary.BigEndian.AppendUint64(nil, n+1))
	return nil
}

func decodeCount(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
