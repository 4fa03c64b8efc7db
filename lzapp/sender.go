package lzapp

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
)

// EstimateFees quotes sending payload to dstChainID with this application as
// the sender.
func (a *LzApp) EstimateFees(r state.Reader, useZro bool, dstChainID uint16, payload []byte, adapterParams []byte) (nativeFee *uint256.Int, zroFee *uint256.Int, err error) {
	return a.endpoint.EstimateFees(r, dstChainID, a.addr, payload, useZro, adapterParams)
}

// Send dispatches payload to the trusted remote of dstChainID. The value
// attached to f is forwarded to the endpoint and any excess is refunded to
// the caller.
func (a *LzApp) Send(f *host.Frame, dstChainID uint16, payload []byte, adapterParams []byte) error {
	path := a.TrustedRemote(f.State(), dstChainID)
	if len(path) == 0 {
		return fmt.Errorf("%w: chain %d", ErrNotTrustedRemote, dstChainID)
	}
	refund := f.Caller
	return f.Call(a.endpoint.Address(), f.Value, func(ef *host.Frame) error {
		return a.endpoint.Send(ef, dstChainID, path, payload, refund, common.Address{}, adapterParams)
	})
}
