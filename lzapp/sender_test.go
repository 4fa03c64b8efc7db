package lzapp

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/endpoint"
	"github.com/maticnetwork/lzapp/endpoint/mocks"
)

func TestEstimateFees(t *testing.T) {
	h, a, _ := newBlockingPair(t)

	native, zro, err := a.EstimateFees(h.state(), false, testChainID, payload, nil)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(13201133000000000), native)
	require.True(t, zro.IsZero())

	again, zroAgain, err := a.EstimateFees(h.state(), false, testChainID, payload, nil)
	require.NoError(t, err)
	require.Equal(t, native, again)
	require.Equal(t, zro, zroAgain)
}

func TestSendWithoutTrustedRemote(t *testing.T) {
	h, a, _ := newBlockingPair(t)

	h.mustTx(owner, a.Address(), func(f *host.Frame) error {
		return a.SetTrustedRemote(f, testChainID, nil)
	})
	_, err := h.send(a.LzApp, payload)
	require.ErrorIs(t, err, ErrNotTrustedRemote)
}

func TestSendForwards(t *testing.T) {
	h, a, _ := newBlockingPair(t)
	fee := h.fees(a.LzApp, payload)

	receipt, err := h.send(a.LzApp, payload)
	require.NoError(t, err)

	ev, ok := types.FindEvent[*endpoint.Sending](receipt)
	require.True(t, ok)
	require.Equal(t, testChainID, ev.DstChainID)
	require.Equal(t, a.TrustedRemote(h.state(), testChainID), ev.Destination)
	require.Equal(t, payload, ev.Payload)
	require.Equal(t, owner, ev.RefundAddress)
	require.Equal(t, common.Address{}, ev.ZroPaymentAddress)
	require.Empty(t, ev.AdapterParams)
	require.Equal(t, fee, ev.Value)

	require.Equal(t, uint64(1), h.ep.OutboundNonce(h.state(), testChainID, a.Address()))
}

func TestSendUnderpaid(t *testing.T) {
	h, a, _ := newBlockingPair(t)

	_, err := h.chain.Transact(owner, a.Address(), uint256.NewInt(1), func(f *host.Frame) error {
		return a.Send(f, testChainID, payload, nil)
	})
	require.ErrorIs(t, err, endpoint.ErrInsufficientFee)
}

func TestSendMockEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	ep := mocks.NewMockEndpoint(ctrl)
	ep.EXPECT().Address().Return(epAddr).AnyTimes()

	chain := host.NewChain(memorydb.New())
	defer chain.Close()

	app, err := DeployNonblocking(chain, addrA, Config{Owner: owner, Endpoint: ep})
	require.NoError(t, err)

	path := types.PackPath(addrB, addrA)
	params := types.DefaultAdapterParams(300000)
	value := uint256.NewInt(42)

	_, err = chain.Transact(owner, addrA, nil, func(f *host.Frame) error {
		return app.SetTrustedRemote(f, 9, path)
	})
	require.NoError(t, err)

	ep.EXPECT().
		Send(gomock.Any(), uint16(9), path, payload, user, common.Address{}, params).
		DoAndReturn(func(f *host.Frame, _ uint16, _, _ []byte, _, _ common.Address, _ []byte) error {
			require.Equal(t, addrA, f.Caller)
			require.Equal(t, epAddr, f.Self)
			require.Equal(t, value, f.Value)
			return nil
		})

	_, err = chain.Transact(user, addrA, value, func(f *host.Frame) error {
		return app.Send(f, 9, payload, params)
	})
	require.NoError(t, err)

	ep.EXPECT().
		EstimateFees(gomock.Any(), uint16(9), addrA, payload, true, params).
		Return(uint256.NewInt(1), uint256.NewInt(2), nil).
		Times(2)

	for i := 0; i < 2; i++ {
		native, zro, err := app.EstimateFees(chain.State(), true, 9, payload, params)
		require.NoError(t, err)
		require.Equal(t, uint64(1), native.Uint64())
		require.Equal(t, uint64(2), zro.Uint64())
	}
}
