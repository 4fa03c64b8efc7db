// Package lzapp implements user applications of the messaging endpoint: the
// shared admission pipeline, ownership and configuration plumbing, and the
// blocking and nonblocking delivery strategies.
package lzapp

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/endpoint"
)

var (
	admittedCounter  = metrics.NewRegisteredCounter("lzapp/admitted", nil)
	rejectedCounter  = metrics.NewRegisteredCounter("lzapp/rejected", nil)
	deliveredCounter = metrics.NewRegisteredCounter("lzapp/delivered", nil)
)

// Config holds the constructor arguments of an application contract.
type Config struct {
	Owner       common.Address
	Endpoint    endpoint.Endpoint
	Application Application
}

// deliveryStrategy applies admitted messages.
type deliveryStrategy interface {
	deliver(f *host.Frame, msg *types.Message) error
}

// LzApp is the base shared by both application variants. It owns the
// admission pipeline of the receive entry point and the owner-gated
// configuration of the application.
type LzApp struct {
	addr     common.Address
	chain    *host.Chain
	endpoint endpoint.Endpoint
	app      Application
	strategy deliveryStrategy
	owner    common.Address // constructor argument only, storage is authoritative

	log log.Logger
}

func newLzApp(chain *host.Chain, addr common.Address, cfg Config, strategy deliveryStrategy) *LzApp {
	app := cfg.Application
	if app == nil {
		app = ApplicationFunc(func(*host.Frame, *types.Message) error { return nil })
	}
	return &LzApp{
		addr:     addr,
		chain:    chain,
		endpoint: cfg.Endpoint,
		app:      app,
		strategy: strategy,
		owner:    cfg.Owner,
		log:      log.New("app", addr),
	}
}

// deploy registers the contract and runs its constructor.
func (a *LzApp) deploy(contract interface{}) error {
	return a.chain.Deploy(a.owner, a.addr, contract, func(f *host.Frame) error {
		if a.owner == (common.Address{}) {
			return ErrZeroOwner
		}
		f.Set(ownerKey, a.owner.Bytes())
		f.Emit(&OwnershipTransferred{NewOwner: a.owner})
		return nil
	})
}

// Address returns the address the application is deployed at.
func (a *LzApp) Address() common.Address { return a.addr }

// Endpoint returns the endpoint the application trusts.
func (a *LzApp) Endpoint() endpoint.Endpoint { return a.endpoint }

// LzReceive is the receive entry point invoked by the endpoint. The message
// is admitted only if the endpoint is the caller, the path is the trusted
// remote of its chain and the precrime validator, if set, approves it.
func (a *LzApp) LzReceive(f *host.Frame, srcChainID uint16, srcPath []byte, nonce uint64, payload []byte) error {
	msg := types.NewMessage(srcChainID, srcPath, nonce, payload)
	if err := a.admit(f, msg); err != nil {
		rejectedCounter.Inc(1)
		a.log.Debug("Message rejected", "src", srcChainID, "nonce", nonce, "err", err)
		return err
	}
	admittedCounter.Inc(1)
	return a.strategy.deliver(f, msg)
}

func (a *LzApp) admit(f *host.Frame, msg *types.Message) error {
	if f.Caller != a.endpoint.Address() {
		return fmt.Errorf("%w: %s", ErrNotEndpoint, f.Caller)
	}
	if err := a.AssertTrustedRemote(f.State(), msg.SrcChainID, msg.SrcPath); err != nil {
		return err
	}
	return a.checkPrecrime(f, msg)
}

// apply runs the application logic and records the delivery.
func (a *LzApp) apply(f *host.Frame, msg *types.Message) error {
	if err := a.app.Receive(f.Namespace(applicationPrefix), msg); err != nil {
		return err
	}
	enc, err := rlp.EncodeToBytes(&types.Delivery{From: f.Caller, Payload: msg.Payload})
	if err != nil {
		return err
	}
	f.Set(receivedKey(msg.SrcChainID, msg.SrcPath, msg.Nonce), enc)
	deliveredCounter.Inc(1)
	return nil
}

// Received returns the delivery recorded for a message coordinate.
func (a *LzApp) Received(r state.Reader, srcChainID uint16, srcPath []byte, nonce uint64) (*types.Delivery, bool) {
	enc := r.GetState(a.addr, receivedKey(srcChainID, srcPath, nonce))
	if len(enc) == 0 {
		return nil, false
	}
	d := new(types.Delivery)
	if err := rlp.DecodeBytes(enc, d); err != nil {
		a.log.Error("Corrupt delivery record", "src", srcChainID, "nonce", nonce, "err", err)
		return nil, false
	}
	return d, true
}
