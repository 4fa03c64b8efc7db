package lzapp

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/types"
)

// Validator is implemented by contracts that can serve as precrime. A
// non-nil error rejects the message.
type Validator interface {
	ValidateMessage(f *host.Frame, app common.Address, msg *types.Message) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(f *host.Frame, app common.Address, msg *types.Message) error

func (fn ValidatorFunc) ValidateMessage(f *host.Frame, app common.Address, msg *types.Message) error {
	return fn(f, app, msg)
}

// checkPrecrime consults the configured validator. An address without a
// validator contract rejects every message.
func (a *LzApp) checkPrecrime(f *host.Frame, msg *types.Message) error {
	addr := a.Precrime(f.State())
	if addr == (common.Address{}) {
		return nil
	}
	validator, ok := host.ContractAt[Validator](a.chain, addr)
	if !ok {
		return fmt.Errorf("%w: no validator at %s", ErrPrecrimeRejected, addr)
	}
	err := f.Call(addr, nil, func(vf *host.Frame) error {
		return validator.ValidateMessage(vf, a.addr, msg)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrecrimeRejected, err)
	}
	return nil
}
