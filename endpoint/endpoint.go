// Package endpoint defines the boundary between applications and the
// messaging endpoint that transports their payloads between chains, and
// provides an in-process endpoint implementation.
//
// Contract methods follow one calling convention: the frame passed in is
// executing as the contract itself (f.Self is the contract's address and
// f.Caller the account or contract that called it). Callers enter another
// contract through host.Frame.Call. Read-only methods take a state.Reader so
// they can run against a transaction's state or committed state alike.
package endpoint

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
)

//go:generate mockgen -source=endpoint.go -destination=mocks/endpoint.go -package=mocks
type Endpoint interface {
	// Address is the address the endpoint contract is deployed at.
	Address() common.Address

	// Send dispatches payload to the destination path on dstChainID. The
	// value attached to f pays the fees.
	Send(f *host.Frame, dstChainID uint16, destination []byte, payload []byte, refundAddress common.Address, zroPaymentAddress common.Address, adapterParams []byte) error

	// EstimateFees quotes the native and ZRO fees for sending payload.
	EstimateFees(r state.Reader, dstChainID uint16, userApplication common.Address, payload []byte, payInZRO bool, adapterParams []byte) (nativeFee *uint256.Int, zroFee *uint256.Int, err error)

	SetConfig(f *host.Frame, version uint16, chainID uint16, configType uint64, config []byte) error
	GetConfig(r state.Reader, version uint16, chainID uint16, userApplication common.Address, configType uint64) ([]byte, error)
	SetSendVersion(f *host.Frame, version uint16) error
	SetReceiveVersion(f *host.Frame, version uint16) error

	// ForceResumeReceive drops the payload blocking srcPath. Only the
	// application the payload was addressed to may call it.
	ForceResumeReceive(f *host.Frame, srcChainID uint16, srcPath []byte) error
}

// Receiver is implemented by applications that accept payloads from the
// endpoint.
type Receiver interface {
	LzReceive(f *host.Frame, srcChainID uint16, srcPath []byte, nonce uint64, payload []byte) error
}
