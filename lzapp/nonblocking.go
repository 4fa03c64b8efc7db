package lzapp

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
)

var (
	failedCounter  = metrics.NewRegisteredCounter("lzapp/failed", nil)
	retriedCounter = metrics.NewRegisteredCounter("lzapp/retried", nil)
	clearedCounter = metrics.NewRegisteredCounter("lzapp/cleared", nil)
)

// NonblockingApp never fails an admitted delivery. The application runs in
// an isolated call back into the contract; if it fails, the payload hash is
// stored and the message can be retried by anyone with RetryMessage.
type NonblockingApp struct {
	*LzApp
}

// NewNonblocking creates a nonblocking application. It must be deployed
// before use, see DeployNonblocking.
func NewNonblocking(chain *host.Chain, addr common.Address, cfg Config) *NonblockingApp {
	n := new(NonblockingApp)
	n.LzApp = newLzApp(chain, addr, cfg, n)
	return n
}

// DeployNonblocking creates a nonblocking application and deploys it at addr.
func DeployNonblocking(chain *host.Chain, addr common.Address, cfg Config) (*NonblockingApp, error) {
	n := NewNonblocking(chain, addr, cfg)
	if err := n.deploy(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *NonblockingApp) deliver(f *host.Frame, msg *types.Message) error {
	res := f.TryCall(f.Self, nil, func(self *host.Frame) error {
		return n.NonblockingLzReceive(self, msg.SrcChainID, msg.SrcPath, msg.Nonce, msg.Payload)
	})
	if res.Failed() {
		n.storeFailed(f, msg, res.Revert())
	}
	return nil
}

// NonblockingLzReceive applies a message. Only the contract itself may call
// it, so it cannot be used to skip admission.
func (n *NonblockingApp) NonblockingLzReceive(f *host.Frame, srcChainID uint16, srcPath []byte, nonce uint64, payload []byte) error {
	if f.Caller != f.Self {
		return fmt.Errorf("%w: %s", ErrCallerNotThis, f.Caller)
	}
	return n.apply(f, types.NewMessage(srcChainID, srcPath, nonce, payload))
}

func (n *NonblockingApp) storeFailed(f *host.Frame, msg *types.Message, reason []byte) {
	hash := msg.PayloadHash()
	f.Set(failedMessageKey(msg.SrcChainID, msg.SrcPath, msg.Nonce), hash.Bytes())
	f.Set(preimageKey(hash), msg.Payload)
	f.Emit(&MessageFailed{
		SrcChainID: msg.SrcChainID,
		SrcPath:    common.CopyBytes(msg.SrcPath),
		Nonce:      msg.Nonce,
		Payload:    common.CopyBytes(msg.Payload),
		Reason:     reason,
	})
	failedCounter.Inc(1)
	n.log.Debug("Message failed", "src", msg.SrcChainID, "nonce", msg.Nonce, "hash", hash)
}

// RetryMessage re-applies a failed message. The payload must hash to the
// stored record; a nil payload drops the record without applying anything.
// An empty non-nil payload is a payload like any other. The record is cleared before the application runs, so a retry
// succeeds at most once per failure. A failing retry fails the transaction,
// which also restores the record.
func (n *NonblockingApp) RetryMessage(f *host.Frame, srcChainID uint16, srcPath []byte, nonce uint64, payload []byte) error {
	key := failedMessageKey(srcChainID, srcPath, nonce)
	stored := common.BytesToHash(f.Get(key))
	if stored == (common.Hash{}) {
		return ErrNoStoredMessage
	}
	if payload == nil {
		f.Set(key, nil)
		f.Emit(&FailedMessageCleared{SrcChainID: srcChainID, SrcPath: common.CopyBytes(srcPath), Nonce: nonce, PayloadHash: stored})
		clearedCounter.Inc(1)
		return nil
	}
	hash := types.PayloadHash(payload)
	if hash != stored {
		return fmt.Errorf("%w: have %s, want %s", ErrIncorrectPayloadHash, hash, stored)
	}
	f.Set(key, nil)

	if err := n.apply(f, types.NewMessage(srcChainID, srcPath, nonce, payload)); err != nil {
		return err
	}
	f.Emit(&RetryMessageSuccess{SrcChainID: srcChainID, SrcPath: common.CopyBytes(srcPath), Nonce: nonce, PayloadHash: hash})
	retriedCounter.Inc(1)
	return nil
}

// StoreFailedMessage seeds a failure record by hash. The payload can only be
// retried by whoever knows the preimage.
func (n *NonblockingApp) StoreFailedMessage(f *host.Frame, srcChainID uint16, srcPath []byte, nonce uint64, payloadHash common.Hash) error {
	if err := n.onlyOwner(f); err != nil {
		return err
	}
	if payloadHash == (common.Hash{}) {
		return ErrEmptyPayloadHash
	}
	f.Set(failedMessageKey(srcChainID, srcPath, nonce), payloadHash.Bytes())
	return nil
}

// StoreFailedPayload seeds a failure record for payload and keeps its
// preimage.
func (n *NonblockingApp) StoreFailedPayload(f *host.Frame, srcChainID uint16, srcPath []byte, nonce uint64, payload []byte) error {
	hash := types.PayloadHash(payload)
	if err := n.StoreFailedMessage(f, srcChainID, srcPath, nonce, hash); err != nil {
		return err
	}
	f.Set(preimageKey(hash), payload)
	return nil
}

// FailedMessage returns the payload hash pending retry for a message
// coordinate, or the zero hash.
func (n *NonblockingApp) FailedMessage(r state.Reader, srcChainID uint16, srcPath []byte, nonce uint64) common.Hash {
	return common.BytesToHash(r.GetState(n.addr, failedMessageKey(srcChainID, srcPath, nonce)))
}

// Preimage returns a payload known to the contract by its hash.
func (n *NonblockingApp) Preimage(r state.Reader, hash common.Hash) []byte {
	return r.GetState(n.addr, preimageKey(hash))
}
