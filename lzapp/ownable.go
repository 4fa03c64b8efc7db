package lzapp

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
)

// Owner returns the account allowed to configure the application.
func (a *LzApp) Owner(r state.Reader) common.Address {
	return common.BytesToAddress(r.GetState(a.addr, ownerKey))
}

// PendingOwner returns the account a transfer was started to, if any.
func (a *LzApp) PendingOwner(r state.Reader) common.Address {
	return common.BytesToAddress(r.GetState(a.addr, pendingOwnerKey))
}

func (a *LzApp) onlyOwner(f *host.Frame) error {
	if f.Caller != a.Owner(f.State()) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, f.Caller)
	}
	return nil
}

// TransferOwnership starts a transfer to newOwner, who completes it with
// AcceptOwnership. Until then the current owner stays in charge.
func (a *LzApp) TransferOwnership(f *host.Frame, newOwner common.Address) error {
	if err := a.onlyOwner(f); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrZeroOwner
	}
	f.Set(pendingOwnerKey, newOwner.Bytes())
	f.Emit(&OwnershipTransferStarted{PreviousOwner: f.Caller, NewOwner: newOwner})
	return nil
}

// AcceptOwnership completes a transfer. Only the pending owner may call it.
func (a *LzApp) AcceptOwnership(f *host.Frame) error {
	pending := a.PendingOwner(f.State())
	if pending == (common.Address{}) || f.Caller != pending {
		return fmt.Errorf("%w: %s", ErrUnauthorized, f.Caller)
	}
	previous := a.Owner(f.State())
	f.Set(ownerKey, pending.Bytes())
	f.Set(pendingOwnerKey, nil)
	f.Emit(&OwnershipTransferred{PreviousOwner: previous, NewOwner: pending})
	a.log.Info("Ownership transferred", "from", previous, "to", pending)
	return nil
}

// Deployed reports whether an application constructor ever ran at addr.
func Deployed(r state.Reader, addr common.Address) bool {
	return len(r.GetState(addr, ownerKey)) > 0
}
