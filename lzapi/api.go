// Package lzapi exposes applications and the endpoint of a chain over
// JSON-RPC in the "lz" namespace.
package lzapi

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/endpoint"
	"github.com/maticnetwork/lzapp/lzapp"
)

var (
	errUnknownApp     = errors.New("no application at address")
	errNotNonblocking = errors.New("application keeps no failed messages")
	errChainID        = errors.New("chain id out of range")
)

// revertError is an API error that carries the revert reason and data.
type revertError struct {
	error
	reason string // revert reason hex encoded
}

// ErrorCode returns the JSON error code for a revert.
func (e *revertError) ErrorCode() int {
	return 3
}

// ErrorData returns the hex encoded revert reason.
func (e *revertError) ErrorData() interface{} {
	return e.reason
}

// wrapError turns execution failures into revert errors.
func wrapError(err error) error {
	var rerr *host.RevertError
	if errors.As(err, &rerr) {
		return &revertError{error: err, reason: hexutil.Encode(rerr.ErrorData())}
	}
	return err
}

// Backend is what the API serves from.
type Backend interface {
	Chain() *host.Chain
	Endpoint() *endpoint.Local
}

// API offers application state and transactions of one chain.
type API struct {
	b Backend

	mu      sync.Mutex
	readers map[common.Address]*lzapp.Reader
}

// NewAPI creates the lz API service.
func NewAPI(b Backend) *API {
	return &API{b: b, readers: make(map[common.Address]*lzapp.Reader)}
}

// APIs returns the RPC services offered over b.
func APIs(b Backend) []rpc.API {
	return []rpc.API{{
		Namespace: "lz",
		Service:   NewAPI(b),
	}}
}

func (api *API) app(addr common.Address) (*lzapp.LzApp, error) {
	contract, ok := api.b.Chain().Contract(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownApp, addr)
	}
	switch app := contract.(type) {
	case *lzapp.BlockingApp:
		return app.LzApp, nil
	case *lzapp.NonblockingApp:
		return app.LzApp, nil
	}
	return nil, fmt.Errorf("%w: %s", errUnknownApp, addr)
}

func (api *API) nonblocking(addr common.Address) (*lzapp.NonblockingApp, error) {
	if _, err := api.app(addr); err != nil {
		return nil, err
	}
	app, ok := host.ContractAt[*lzapp.NonblockingApp](api.b.Chain(), addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotNonblocking, addr)
	}
	return app, nil
}

func (api *API) reader(app *lzapp.NonblockingApp) (*lzapp.Reader, error) {
	api.mu.Lock()
	defer api.mu.Unlock()

	if r, ok := api.readers[app.Address()]; ok {
		return r, nil
	}
	r, err := lzapp.NewReader(app, 0)
	if err != nil {
		return nil, err
	}
	api.readers[app.Address()] = r
	return r, nil
}

func chainID(id hexutil.Uint64) (uint16, error) {
	if id > 0xffff {
		return 0, fmt.Errorf("%w: %d", errChainID, uint64(id))
	}
	return uint16(id), nil
}

// Owner returns the owner of an application.
func (api *API) Owner(addr common.Address) (common.Address, error) {
	app, err := api.app(addr)
	if err != nil {
		return common.Address{}, err
	}
	return app.Owner(api.b.Chain().State()), nil
}

// TrustedRemote returns the trusted path registered for a chain.
func (api *API) TrustedRemote(addr common.Address, chain hexutil.Uint64) (hexutil.Bytes, error) {
	app, err := api.app(addr)
	if err != nil {
		return nil, err
	}
	id, err := chainID(chain)
	if err != nil {
		return nil, err
	}
	return app.TrustedRemote(api.b.Chain().State(), id), nil
}

// IsTrustedRemote reports whether path is the trusted path of a chain.
func (api *API) IsTrustedRemote(addr common.Address, chain hexutil.Uint64, path hexutil.Bytes) (bool, error) {
	app, err := api.app(addr)
	if err != nil {
		return false, err
	}
	id, err := chainID(chain)
	if err != nil {
		return false, err
	}
	return app.IsTrustedRemote(api.b.Chain().State(), id, path), nil
}

// Precrime returns the precrime validator address of an application.
func (api *API) Precrime(addr common.Address) (common.Address, error) {
	app, err := api.app(addr)
	if err != nil {
		return common.Address{}, err
	}
	return app.Precrime(api.b.Chain().State()), nil
}

// FailedMessage returns the payload hash pending retry, or the zero hash.
func (api *API) FailedMessage(addr common.Address, chain hexutil.Uint64, path hexutil.Bytes, nonce hexutil.Uint64) (common.Hash, error) {
	app, err := api.nonblocking(addr)
	if err != nil {
		return common.Hash{}, err
	}
	id, err := chainID(chain)
	if err != nil {
		return common.Hash{}, err
	}
	return app.FailedMessage(api.b.Chain().State(), id, path, uint64(nonce)), nil
}

// RPCFailedMessage is a pending retry with its payload when known.
type RPCFailedMessage struct {
	SrcChainID  hexutil.Uint64 `json:"srcChainId"`
	SrcPath     hexutil.Bytes  `json:"srcPath"`
	Nonce       hexutil.Uint64 `json:"nonce"`
	PayloadHash common.Hash    `json:"payloadHash"`
	Payload     hexutil.Bytes  `json:"payload,omitempty"`
}

// FailedMessages lists the messages pending retry.
func (api *API) FailedMessages(addr common.Address) ([]*RPCFailedMessage, error) {
	app, err := api.nonblocking(addr)
	if err != nil {
		return nil, err
	}
	r, err := api.reader(app)
	if err != nil {
		return nil, err
	}
	failed, err := r.FailedMessages()
	if err != nil {
		return nil, err
	}
	out := make([]*RPCFailedMessage, 0, len(failed))
	for _, fm := range failed {
		out = append(out, &RPCFailedMessage{
			SrcChainID:  hexutil.Uint64(fm.SrcChainID),
			SrcPath:     fm.SrcPath,
			Nonce:       hexutil.Uint64(fm.Nonce),
			PayloadHash: fm.PayloadHash,
			Payload:     r.Preimage(fm.PayloadHash),
		})
	}
	return out, nil
}

// RPCDelivery is an applied message.
type RPCDelivery struct {
	From    common.Address `json:"from"`
	Payload hexutil.Bytes  `json:"payload"`
}

// Delivery returns the delivery recorded for a message, or null.
func (api *API) Delivery(addr common.Address, chain hexutil.Uint64, path hexutil.Bytes, nonce hexutil.Uint64) (*RPCDelivery, error) {
	app, err := api.app(addr)
	if err != nil {
		return nil, err
	}
	id, err := chainID(chain)
	if err != nil {
		return nil, err
	}
	d, ok := app.Received(api.b.Chain().State(), id, path, uint64(nonce))
	if !ok {
		return nil, nil
	}
	return &RPCDelivery{From: d.From, Payload: d.Payload}, nil
}

// FeeQuote is the fee of sending a message.
type FeeQuote struct {
	NativeFee *hexutil.Big `json:"nativeFee"`
	ZroFee    *hexutil.Big `json:"zroFee"`
}

// EstimateFees quotes sending payload from an application to a chain.
func (api *API) EstimateFees(addr common.Address, dstChain hexutil.Uint64, payload hexutil.Bytes, useZro bool, adapterParams hexutil.Bytes) (*FeeQuote, error) {
	app, err := api.app(addr)
	if err != nil {
		return nil, err
	}
	id, err := chainID(dstChain)
	if err != nil {
		return nil, err
	}
	native, zro, err := app.EstimateFees(api.b.Chain().State(), useZro, id, payload, adapterParams)
	if err != nil {
		return nil, err
	}
	return &FeeQuote{NativeFee: (*hexutil.Big)(native.ToBig()), ZroFee: (*hexutil.Big)(zro.ToBig())}, nil
}

// InboundNonce returns the last nonce the endpoint accepted on a path.
func (api *API) InboundNonce(chain hexutil.Uint64, path hexutil.Bytes) (hexutil.Uint64, error) {
	id, err := chainID(chain)
	if err != nil {
		return 0, err
	}
	return hexutil.Uint64(api.b.Endpoint().InboundNonce(api.b.Chain().State(), id, path)), nil
}

// RPCLog is a log of a committed transaction.
type RPCLog struct {
	Address common.Address `json:"address"`
	Index   hexutil.Uint   `json:"logIndex"`
	Type    string         `json:"type"`
	Event   interface{}    `json:"event"`
}

// RPCReceipt is the outcome of a committed transaction.
type RPCReceipt struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Logs []*RPCLog      `json:"logs"`
}

func newRPCLog(l *types.Log) *RPCLog {
	t := reflect.TypeOf(l.Event)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &RPCLog{Address: l.Address, Index: hexutil.Uint(l.Index), Type: t.Name(), Event: l.Event}
}

func newRPCReceipt(r *types.Receipt) *RPCReceipt {
	out := &RPCReceipt{From: r.From, To: r.To, Logs: make([]*RPCLog, 0, len(r.Logs))}
	for _, l := range r.Logs {
		out.Logs = append(out.Logs, newRPCLog(l))
	}
	return out
}

// RetryMessage retries a failed message as from. Without a payload the
// record is dropped; "0x" retries the empty payload.
func (api *API) RetryMessage(from common.Address, addr common.Address, chain hexutil.Uint64, path hexutil.Bytes, nonce hexutil.Uint64, payload hexutil.Bytes) (*RPCReceipt, error) {
	app, err := api.nonblocking(addr)
	if err != nil {
		return nil, err
	}
	id, err := chainID(chain)
	if err != nil {
		return nil, err
	}
	receipt, err := api.b.Chain().Transact(from, addr, nil, func(f *host.Frame) error {
		return app.RetryMessage(f, id, path, uint64(nonce), payload)
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return newRPCReceipt(receipt), nil
}

// Send sends payload from an application as from. Without a value the
// quoted native fee is paid.
func (api *API) Send(from common.Address, addr common.Address, dstChain hexutil.Uint64, payload hexutil.Bytes, adapterParams hexutil.Bytes, value *hexutil.Big) (*RPCReceipt, error) {
	app, err := api.app(addr)
	if err != nil {
		return nil, err
	}
	id, err := chainID(dstChain)
	if err != nil {
		return nil, err
	}
	var fee *uint256.Int
	if value != nil {
		var overflow bool
		if fee, overflow = uint256.FromBig(value.ToInt()); overflow {
			return nil, fmt.Errorf("value overflows 256 bits")
		}
	} else {
		if fee, _, err = app.EstimateFees(api.b.Chain().State(), false, id, payload, adapterParams); err != nil {
			return nil, err
		}
	}
	receipt, err := api.b.Chain().Transact(from, addr, fee, func(f *host.Frame) error {
		return app.Send(f, id, payload, adapterParams)
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return newRPCReceipt(receipt), nil
}
