package relayws

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maticnetwork/lzapp/core/types"
)

func notification(t *testing.T, p *types.PacketJSON) []byte {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	msg, err := json.Marshal(wsMessage{
		JSONRPC: "2.0",
		Method:  notificationMethod,
		Params:  &notificationParams{Subscription: "0x1", Result: raw},
	})
	require.NoError(t, err)
	return msg
}

func TestHandleMessage(t *testing.T) {
	valid := testPacket(1).ToJSON()

	outOfRange := testPacket(1).ToJSON()
	outOfRange.SrcChainID = hexutil.Uint64(1 << 16)

	zeroDst := testPacket(1).ToJSON()
	zeroDst.DstAddress = common.Address{}

	tests := []struct {
		name    string
		message []byte
		packet  *types.Packet
		err     error
	}{
		{"packet", notification(t, valid), testPacket(1), nil},
		{"subscribed", []byte(`{"jsonrpc":"2.0","id":1,"result":"0xcafe"}`), nil, nil},
		{"subscription error", []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"no such method"}}`), nil, errSubscription},
		{"bad subscription id", []byte(`{"jsonrpc":"2.0","id":1,"result":7}`), nil, errDecode},
		{"not json", []byte("{"), nil, errDecode},
		{"unknown method", []byte(`{"jsonrpc":"2.0","method":"eth_subscription","params":{}}`), nil, errDecode},
		{"no params", []byte(`{"jsonrpc":"2.0","method":"lz_subscription"}`), nil, errDecode},
		{"other chain", notification(t, testPacket(1).ToJSON()), nil, errUnexpectedChain},
		{"chain out of range", notification(t, outOfRange), nil, errInvalidPacket},
		{"zero nonce", notification(t, testPacket(0).ToJSON()), nil, errInvalidPacket},
		{"zero destination", notification(t, zeroDst), nil, errInvalidPacket},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dst := uint16(2)
			if tc.name == "other chain" {
				dst = 5
			}
			p, err := handleMessage(dst, tc.message)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.packet, p)
		})
	}
}
