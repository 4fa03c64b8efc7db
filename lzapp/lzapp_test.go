package lzapp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/endpoint"
)

var path696969 = []byte{0x69, 0x69, 0x69}

func newSingle(t *testing.T) (*harness, *BlockingApp) {
	h := newHarness(t)
	app, err := DeployBlocking(h.chain, addrA, h.config())
	require.NoError(t, err)
	return h, app
}

func TestDeploy(t *testing.T) {
	h, app := newSingle(t)

	require.Equal(t, epAddr, app.Endpoint().Address())
	require.Equal(t, owner, app.Owner(h.state()))

	_, err := DeployBlocking(h.chain, addrB, Config{Endpoint: h.ep})
	require.ErrorIs(t, err, ErrZeroOwner)

	_, ok := h.chain.Contract(addrB)
	require.False(t, ok)
}

func TestOnlyEndpoint(t *testing.T) {
	h, app := newSingle(t)

	_, err := h.tx(user, app.Address(), func(f *host.Frame) error {
		return app.LzReceive(f, testChainID, path696969, 1, payload)
	})
	require.ErrorIs(t, err, ErrNotEndpoint)
}

func TestAssertTrustedRemote(t *testing.T) {
	tests := []struct {
		name    string
		trusted []byte
		path    []byte
		err     error
	}{
		{"trusted", path696969, path696969, nil},
		{"no trusted remote", nil, path696969, ErrNotTrustedRemote},
		{"length mismatch", path696969, []byte{0x69, 0x69, 0x69, 0x69}, ErrNotTrustedRemote},
		{"value mismatch", path696969, []byte{0x69, 0x69, 0x68}, ErrNotTrustedRemote},
		{"empty path", path696969, nil, ErrNotTrustedRemote},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, app := newSingle(t)
			if tc.trusted != nil {
				h.mustTx(owner, app.Address(), func(f *host.Frame) error {
					return app.SetTrustedRemote(f, 0, tc.trusted)
				})
			}
			err := app.AssertTrustedRemote(h.state(), 0, tc.path)
			if tc.err == nil {
				require.NoError(t, err)
				require.True(t, app.IsTrustedRemote(h.state(), 0, tc.path))
			} else {
				require.ErrorIs(t, err, tc.err)
				require.False(t, app.IsTrustedRemote(h.state(), 0, tc.path))
			}
		})
	}
}

func TestSetTrustedRemote(t *testing.T) {
	h, app := newSingle(t)

	receipt := h.mustTx(owner, app.Address(), func(f *host.Frame) error {
		return app.SetTrustedRemote(f, 0, path696969)
	})
	ev, ok := types.FindEvent[*SetTrustedRemote](receipt)
	require.True(t, ok)
	require.Equal(t, &SetTrustedRemote{ChainID: 0, Path: path696969}, ev)
	require.Equal(t, path696969, app.TrustedRemote(h.state(), 0))

	// Replacing the entry stops trusting the old path.
	h.mustTx(owner, app.Address(), func(f *host.Frame) error {
		return app.SetTrustedRemote(f, 0, []byte{0x68})
	})
	require.False(t, app.IsTrustedRemote(h.state(), 0, path696969))
	require.True(t, app.IsTrustedRemote(h.state(), 0, []byte{0x68}))
}

func TestTrustedRemoteAddress(t *testing.T) {
	h, app := newSingle(t)
	remote := common.HexToAddress("0x1234")

	_, err := app.GetTrustedRemoteAddress(h.state(), 7)
	require.ErrorIs(t, err, ErrNoTrustedPath)

	h.mustTx(owner, app.Address(), func(f *host.Frame) error {
		return app.SetTrustedRemoteAddress(f, 7, remote.Bytes())
	})
	require.Equal(t, types.PackPath(remote, app.Address()), app.TrustedRemote(h.state(), 7))

	got, err := app.GetTrustedRemoteAddress(h.state(), 7)
	require.NoError(t, err)
	require.Equal(t, remote.Bytes(), got)
}

func TestOwnerOnly(t *testing.T) {
	h, app := newSingle(t)

	calls := map[string]func(f *host.Frame) error{
		"setTrustedRemote": func(f *host.Frame) error { return app.SetTrustedRemote(f, 0, path696969) },
		"setTrustedRemoteAddress": func(f *host.Frame) error {
			return app.SetTrustedRemoteAddress(f, 0, path696969)
		},
		"setPrecrime":        func(f *host.Frame) error { return app.SetPrecrime(f, user) },
		"setConfig":          func(f *host.Frame) error { return app.SetConfig(f, 0, 0, 0, path696969) },
		"setSendVersion":     func(f *host.Frame) error { return app.SetSendVersion(f, 0) },
		"setReceiveVersion":  func(f *host.Frame) error { return app.SetReceiveVersion(f, 0) },
		"forceResumeReceive": func(f *host.Frame) error { return app.ForceResumeReceive(f, 0, path696969) },
		"transferOwnership":  func(f *host.Frame) error { return app.TransferOwnership(f, user) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			_, err := h.tx(user, app.Address(), call)
			require.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestSetPrecrime(t *testing.T) {
	h, app := newSingle(t)

	receipt := h.mustTx(owner, app.Address(), func(f *host.Frame) error {
		return app.SetPrecrime(f, user)
	})
	ev, ok := types.FindEvent[*SetPrecrime](receipt)
	require.True(t, ok)
	require.Equal(t, user, ev.Precrime)
	require.Equal(t, user, app.Precrime(h.state()))
}

func TestConfigForwarding(t *testing.T) {
	h, app := newSingle(t)

	h.mustTx(owner, app.Address(), func(f *host.Frame) error {
		if err := app.SetConfig(f, 0, 1, 2, path696969); err != nil {
			return err
		}
		if err := app.SetSendVersion(f, 5); err != nil {
			return err
		}
		return app.SetReceiveVersion(f, 5)
	})

	cfg, err := h.ep.GetConfig(h.state(), 0, 1, app.Address(), 2)
	require.NoError(t, err)
	require.Equal(t, path696969, cfg)

	cfg, err = app.GetConfig(h.state(), 0, 1, 2)
	require.NoError(t, err)
	require.Equal(t, path696969, cfg)

	require.Equal(t, uint16(5), h.ep.SendVersion(h.state(), app.Address()))
	require.Equal(t, uint16(5), h.ep.ReceiveVersion(h.state(), app.Address()))
}

func TestForceResumeReceive(t *testing.T) {
	h, app := newSingle(t)

	// Store a payload for the app on path 0x696969 of chain 0.
	h.mustTx(relayer, epAddr, h.ep.BlockNextMsg)
	h.mustTx(relayer, epAddr, func(f *host.Frame) error {
		return h.ep.ReceivePayload(f, 0, path696969, app.Address(), 1, endpoint.DefaultGas, payload)
	})
	require.True(t, h.ep.HasStoredPayload(h.state(), 0, path696969))

	receipt := h.mustTx(owner, app.Address(), func(f *host.Frame) error {
		return app.ForceResumeReceive(f, 0, path696969)
	})
	ev, ok := types.FindEvent[*endpoint.UaForceResumeReceive](receipt)
	require.True(t, ok)
	require.Equal(t, &endpoint.UaForceResumeReceive{SrcChainID: 0, SrcPath: path696969}, ev)
	require.False(t, h.ep.HasStoredPayload(h.state(), 0, path696969))
}

func TestOwnershipTransfer(t *testing.T) {
	h, app := newSingle(t)

	_, err := h.tx(owner, app.Address(), func(f *host.Frame) error {
		return app.TransferOwnership(f, common.Address{})
	})
	require.ErrorIs(t, err, ErrZeroOwner)

	h.mustTx(owner, app.Address(), func(f *host.Frame) error {
		return app.TransferOwnership(f, user)
	})
	require.Equal(t, owner, app.Owner(h.state()))
	require.Equal(t, user, app.PendingOwner(h.state()))

	_, err = h.tx(relayer, app.Address(), app.AcceptOwnership)
	require.ErrorIs(t, err, ErrUnauthorized)

	receipt := h.mustTx(user, app.Address(), app.AcceptOwnership)
	ev, ok := types.FindEvent[*OwnershipTransferred](receipt)
	require.True(t, ok)
	require.Equal(t, &OwnershipTransferred{PreviousOwner: owner, NewOwner: user}, ev)
	require.Equal(t, user, app.Owner(h.state()))
	require.Equal(t, common.Address{}, app.PendingOwner(h.state()))

	_, err = h.tx(owner, app.Address(), func(f *host.Frame) error {
		return app.SetPrecrime(f, owner)
	})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPrecrime(t *testing.T) {
	h, a, b := newBlockingPair(t)
	validator := common.HexToAddress("0xfe")
	var reject bool

	require.NoError(t, h.chain.Deploy(owner, validator, ValidatorFunc(func(f *host.Frame, app common.Address, msg *types.Message) error {
		require.Equal(t, b.Address(), f.Caller)
		require.Equal(t, b.Address(), app)
		if reject {
			return host.Revert("rejected")
		}
		return nil
	}), nil))

	// An address without a validator rejects everything.
	h.mustTx(owner, b.Address(), func(f *host.Frame) error { return b.SetPrecrime(f, user) })
	_, err := h.receive(b.LzApp, pathAB, 1, payload)
	require.ErrorIs(t, err, ErrPrecrimeRejected)

	h.mustTx(owner, b.Address(), func(f *host.Frame) error { return b.SetPrecrime(f, validator) })
	reject = true
	_, err = h.receive(b.LzApp, pathAB, 1, payload)
	require.ErrorIs(t, err, ErrPrecrimeRejected)

	reject = false
	_, err = h.send(a.LzApp, payload)
	require.NoError(t, err)
	_, ok := b.Received(h.state(), testChainID, pathAB, 1)
	require.True(t, ok)

	// Clearing the precrime disables the check.
	h.mustTx(owner, b.Address(), func(f *host.Frame) error { return b.SetPrecrime(f, common.Address{}) })
	require.Equal(t, common.Address{}, b.Precrime(h.state()))
}

// TestTrustedRemoteProperties checks that a registered path is the only one
// trusted on its chain, and that other chains trust nothing.
func TestTrustedRemoteProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h, app := newSingle(t)

		chainID := rapid.Uint16().Draw(rt, "chain")
		path := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(rt, "path")
		other := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "other")

		require.False(rt, app.IsTrustedRemote(h.state(), chainID, path))

		h.mustTx(owner, app.Address(), func(f *host.Frame) error {
			return app.SetTrustedRemote(f, chainID, path)
		})
		require.True(rt, app.IsTrustedRemote(h.state(), chainID, path))
		require.Equal(rt, bytes.Equal(path, other), app.IsTrustedRemote(h.state(), chainID, other))
		require.False(rt, app.IsTrustedRemote(h.state(), chainID, path[:len(path)-1]))
		require.False(rt, app.IsTrustedRemote(h.state(), chainID, append(common.CopyBytes(path), 0)))
		require.False(rt, app.IsTrustedRemote(h.state(), chainID+1, path))

		_, err := h.tx(owner, app.Address(), func(f *host.Frame) error {
			return app.Send(f, chainID+1, payload, nil)
		})
		require.True(rt, errors.Is(err, ErrNotTrustedRemote))
	})
}
