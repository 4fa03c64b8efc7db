package lzapp

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/types"
)

const revertOnReceiveReason = "0x08c379a0" +
	"0000000000000000000000000000000000000000000000000000000000000020" +
	"000000000000000000000000000000000000000000000000000000000000000f" +
	"7265766572744f6e526563656976650000000000000000000000000000000000"

func TestNonblockingStoresFailedMessage(t *testing.T) {
	h, a, b := newNonblockingPair(t)
	h.setRevertOnReceive(b.Address(), true)

	receipt, err := h.send(a.LzApp, payload)
	require.NoError(t, err)

	require.Equal(t, crypto.Keccak256Hash(payload), b.FailedMessage(h.state(), testChainID, pathAB, 1))

	ev, ok := types.FindEvent[*MessageFailed](receipt)
	require.True(t, ok)
	require.Equal(t, testChainID, ev.SrcChainID)
	require.Equal(t, pathAB, ev.SrcPath)
	require.Equal(t, uint64(1), ev.Nonce)
	require.Equal(t, payload, ev.Payload)
	require.Equal(t, revertOnReceiveReason, hexutil.Encode(ev.Reason))

	// The endpoint saw a successful delivery.
	require.False(t, h.ep.HasStoredPayload(h.state(), testChainID, pathAB))
	_, ok = b.Received(h.state(), testChainID, pathAB, 1)
	require.False(t, ok)
}

func TestNonblockingForwards(t *testing.T) {
	h, a, b := newNonblockingPair(t)

	_, err := h.send(a.LzApp, payload)
	require.NoError(t, err)

	got, ok := b.Received(h.state(), testChainID, pathAB, 1)
	require.True(t, ok)
	require.Equal(t, payload, got.Payload)
	require.Equal(t, b.Address(), got.From)
	require.Equal(t, common.Hash{}, b.FailedMessage(h.state(), testChainID, pathAB, 1))
}

func TestNonblockingAdmissionStillFails(t *testing.T) {
	h, _, b := newNonblockingPair(t)

	_, err := h.receive(b.LzApp, pathBA, 1, payload)
	require.ErrorIs(t, err, ErrNotTrustedRemote)

	_, err = h.tx(user, b.Address(), func(f *host.Frame) error {
		return b.LzReceive(f, testChainID, pathAB, 1, payload)
	})
	require.ErrorIs(t, err, ErrNotEndpoint)
}

func TestNonblockingLzReceiveCallerNotThis(t *testing.T) {
	h, a, _ := newNonblockingPair(t)

	_, err := h.tx(user, a.Address(), func(f *host.Frame) error {
		return a.NonblockingLzReceive(f, testChainID, addrB.Bytes(), 1, nil)
	})
	require.ErrorIs(t, err, ErrCallerNotThis)
}

func TestRetryWithoutStoredMessage(t *testing.T) {
	h, a, _ := newNonblockingPair(t)

	_, err := h.tx(user, a.Address(), func(f *host.Frame) error {
		return a.RetryMessage(f, testChainID, addrB.Bytes(), 1, nil)
	})
	require.ErrorIs(t, err, ErrNoStoredMessage)
}

func (h *harness) storeFailed(app *NonblockingApp, path []byte, nonce uint64, p []byte) {
	h.t.Helper()
	h.mustTx(owner, app.Address(), func(f *host.Frame) error {
		return app.StoreFailedPayload(f, testChainID, path, nonce, p)
	})
}

func (h *harness) retry(app *NonblockingApp, path []byte, nonce uint64, p []byte) (*types.Receipt, error) {
	return h.tx(user, app.Address(), func(f *host.Frame) error {
		return app.RetryMessage(f, testChainID, path, nonce, p)
	})
}

func TestRetryIsExactlyOnce(t *testing.T) {
	h, a, _ := newNonblockingPair(t)
	target := addrB.Bytes()

	h.storeFailed(a, target, 1, payload)

	receipt, err := h.retry(a, target, 1, payload)
	require.NoError(t, err)

	ev, ok := types.FindEvent[*RetryMessageSuccess](receipt)
	require.True(t, ok)
	require.Equal(t, &RetryMessageSuccess{SrcChainID: testChainID, SrcPath: target, Nonce: 1, PayloadHash: crypto.Keccak256Hash(payload)}, ev)

	got, ok := a.Received(h.state(), testChainID, target, 1)
	require.True(t, ok)
	require.Equal(t, payload, got.Payload)
	require.Equal(t, user, got.From)

	_, err = h.retry(a, target, 1, payload)
	require.ErrorIs(t, err, ErrNoStoredMessage)
}

func TestRetryIncorrectPayload(t *testing.T) {
	h, a, _ := newNonblockingPair(t)
	target := addrB.Bytes()

	h.storeFailed(a, target, 1, payload)

	_, err := h.retry(a, target, 1, []byte{0x69, 0x69})
	require.ErrorIs(t, err, ErrIncorrectPayloadHash)
	require.Equal(t, crypto.Keccak256Hash(payload), a.FailedMessage(h.state(), testChainID, target, 1))
}

func TestRetryFailureKeepsRecord(t *testing.T) {
	h, a, b := newNonblockingPair(t)
	h.setRevertOnReceive(b.Address(), true)

	_, err := h.send(a.LzApp, payload)
	require.NoError(t, err)

	_, err = h.retry(b, pathAB, 1, payload)
	require.Error(t, err)
	require.Equal(t, crypto.Keccak256Hash(payload), b.FailedMessage(h.state(), testChainID, pathAB, 1))
}

func TestRetryWithoutPayloadClears(t *testing.T) {
	h, a, _ := newNonblockingPair(t)
	target := addrB.Bytes()

	h.storeFailed(a, target, 1, payload)

	receipt, err := h.retry(a, target, 1, nil)
	require.NoError(t, err)

	ev, ok := types.FindEvent[*FailedMessageCleared](receipt)
	require.True(t, ok)
	require.Equal(t, crypto.Keccak256Hash(payload), ev.PayloadHash)
	require.Equal(t, common.Hash{}, a.FailedMessage(h.state(), testChainID, target, 1))

	_, ok = a.Received(h.state(), testChainID, target, 1)
	require.False(t, ok)
}

func TestRetryEmptyPayload(t *testing.T) {
	h, a, b := newNonblockingPair(t)
	h.setRevertOnReceive(b.Address(), true)

	_, err := h.send(a.LzApp, []byte{})
	require.NoError(t, err)
	require.Equal(t, types.PayloadHash(nil), b.FailedMessage(h.state(), testChainID, pathAB, 1))

	reader, err := NewReader(b, 0)
	require.NoError(t, err)
	pending, err := reader.PendingMessages()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Payload)

	h.setRevertOnReceive(b.Address(), false)
	receipt, err := h.retry(b, pathAB, 1, pending[0].Payload)
	require.NoError(t, err)

	ev, ok := types.FindEvent[*RetryMessageSuccess](receipt)
	require.True(t, ok)
	require.Equal(t, types.PayloadHash(nil), ev.PayloadHash)
	_, ok = types.FindEvent[*FailedMessageCleared](receipt)
	require.False(t, ok)

	got, ok := b.Received(h.state(), testChainID, pathAB, 1)
	require.True(t, ok)
	require.Empty(t, got.Payload)
	require.Equal(t, common.Hash{}, b.FailedMessage(h.state(), testChainID, pathAB, 1))
}

func TestRetryReentrancy(t *testing.T) {
	h := newHarness(t)
	target := addrB.Bytes()

	var app *NonblockingApp
	var reentry error
	cfg := h.config()
	cfg.Application = ApplicationFunc(func(f *host.Frame, msg *types.Message) error {
		reentry = f.Call(f.Self, nil, func(self *host.Frame) error {
			return app.RetryMessage(self, msg.SrcChainID, msg.SrcPath, msg.Nonce, msg.Payload)
		})
		return nil
	})
	app, err := DeployNonblocking(h.chain, addrA, cfg)
	require.NoError(t, err)

	h.storeFailed(app, target, 1, payload)

	_, err = h.retry(app, target, 1, payload)
	require.NoError(t, err)
	require.ErrorIs(t, reentry, ErrNoStoredMessage)
}

func TestApplicationStorageIsolated(t *testing.T) {
	h := newHarness(t)

	cfg := h.config()
	cfg.Application = ApplicationFunc(func(f *host.Frame, msg *types.Message) error {
		f.Set(ownerKey, user.Bytes())
		f.Set(failedMessageKey(msg.SrcChainID, msg.SrcPath, msg.Nonce), nil)
		return nil
	})
	app, err := DeployNonblocking(h.chain, addrA, cfg)
	require.NoError(t, err)

	target := addrB.Bytes()
	h.storeFailed(app, target, 1, payload)
	_, err = h.retry(app, target, 1, payload)
	require.NoError(t, err)

	require.Equal(t, owner, app.Owner(h.state()))
	require.Equal(t, user.Bytes(), h.state().GetState(addrA, ApplicationKey(ownerKey)))
}

func TestStoreFailedMessage(t *testing.T) {
	h, a, _ := newNonblockingPair(t)
	hash := crypto.Keccak256Hash(payload)

	_, err := h.tx(user, a.Address(), func(f *host.Frame) error {
		return a.StoreFailedMessage(f, testChainID, pathBA, 1, hash)
	})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = h.tx(owner, a.Address(), func(f *host.Frame) error {
		return a.StoreFailedMessage(f, testChainID, pathBA, 1, common.Hash{})
	})
	require.ErrorIs(t, err, ErrEmptyPayloadHash)

	h.mustTx(owner, a.Address(), func(f *host.Frame) error {
		return a.StoreFailedMessage(f, testChainID, pathBA, 1, hash)
	})
	require.Equal(t, hash, a.FailedMessage(h.state(), testChainID, pathBA, 1))
	require.Nil(t, a.Preimage(h.state(), hash))

	_, err = h.retry(a, pathBA, 1, payload)
	require.NoError(t, err)
}

// TestEndToEnd sends 0x696969 from A to a failing B, then retries it once B
// is fixed.
func TestEndToEnd(t *testing.T) {
	h, a, b := newNonblockingPair(t)
	h.setRevertOnReceive(b.Address(), true)

	_, err := h.send(a.LzApp, payload)
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256Hash(payload), b.FailedMessage(h.state(), testChainID, pathAB, 1))

	reader, err := NewReader(b, 0)
	require.NoError(t, err)

	failed, err := reader.FailedMessages()
	require.NoError(t, err)
	require.Equal(t, []*types.FailedMessage{{SrcChainID: testChainID, SrcPath: pathAB, Nonce: 1, PayloadHash: crypto.Keccak256Hash(payload)}}, failed)

	pending, err := reader.PendingMessages()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, payload, pending[0].Payload)

	h.setRevertOnReceive(b.Address(), false)
	_, err = h.retry(b, pathAB, 1, payload)
	require.NoError(t, err)

	require.Equal(t, common.Hash{}, b.FailedMessage(h.state(), testChainID, pathAB, 1))
	got, ok := b.Received(h.state(), testChainID, pathAB, 1)
	require.True(t, ok)
	require.Equal(t, payload, got.Payload)

	failed, err = reader.FailedMessages()
	require.NoError(t, err)
	require.Empty(t, failed)

	// Preimages outlive their records and are served from the cache.
	require.Equal(t, payload, reader.Preimage(crypto.Keccak256Hash(payload)))
}

// TestRetryProperties checks over random payloads that a failed message is
// retried at most once and only with its own payload.
func TestRetryProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h, a, b := newNonblockingPair(t)
		h.setRevertOnReceive(b.Address(), true)

		n := rapid.IntRange(1, 4).Draw(rt, "messages")
		payloads := make([][]byte, n)
		for i := range payloads {
			payloads[i] = rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(rt, "payload")
			_, err := h.send(a.LzApp, payloads[i])
			require.NoError(rt, err)
		}
		h.setRevertOnReceive(b.Address(), false)

		order := rapid.Permutation(indexes(n)).Draw(rt, "order")
		for _, i := range order {
			nonce := uint64(i + 1)
			require.Equal(rt, types.PayloadHash(payloads[i]), b.FailedMessage(h.state(), testChainID, pathAB, nonce))

			wrong := append(common.CopyBytes(payloads[i]), 0)
			_, err := h.retry(b, pathAB, nonce, wrong)
			require.ErrorIs(rt, err, ErrIncorrectPayloadHash)

			_, err = h.retry(b, pathAB, nonce, payloads[i])
			require.NoError(rt, err)

			_, err = h.retry(b, pathAB, nonce, payloads[i])
			require.ErrorIs(rt, err, ErrNoStoredMessage)

			got, ok := b.Received(h.state(), testChainID, pathAB, nonce)
			require.True(rt, ok)
			require.Equal(rt, payloads[i], got.Payload)
		}
	})
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
