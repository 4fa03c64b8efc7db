package relayws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/maticnetwork/lzapp/core/types"
)

// feed is a minimal packet feed server. Every accepted subscription is
// handed to the test through conns.
type feed struct {
	*httptest.Server

	t        *testing.T
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	requests chan subscriptionRequest
}

func newFeed(t *testing.T) *feed {
	f := &feed{
		t:        t,
		conns:    make(chan *websocket.Conn, 4),
		requests: make(chan subscriptionRequest, 4),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *feed) url() string {
	return "ws" + strings.TrimPrefix(f.URL, "http")
}

func (f *feed) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req subscriptionRequest
	if err := conn.ReadJSON(&req); err != nil {
		return
	}
	f.requests <- req
	if err := conn.WriteJSON(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": "0xcafe"}); err != nil {
		return
	}
	f.conns <- conn

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *feed) accept() *websocket.Conn {
	f.t.Helper()
	select {
	case conn := <-f.conns:
		return conn
	case <-time.After(5 * time.Second):
		f.t.Fatal("no subscription")
		return nil
	}
}

func notify(t *testing.T, conn *websocket.Conn, result interface{}) {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	msg := wsMessage{
		JSONRPC: "2.0",
		Method:  notificationMethod,
		Params:  &notificationParams{Subscription: "0xcafe", Result: raw},
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, packets <-chan *types.Packet) *types.Packet {
	t.Helper()
	select {
	case p, ok := <-packets:
		require.True(t, ok, "feed closed")
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("no packet")
		return nil
	}
}

// requireClosed drains packets until the feed is closed.
func requireClosed(t *testing.T, packets <-chan *types.Packet) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-packets:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("feed not closed")
		}
	}
}

func testPacket(nonce uint64) *types.Packet {
	return &types.Packet{
		SrcChainID: 1,
		DstChainID: 2,
		SrcAddress: common.HexToAddress("0xaa"),
		DstAddress: common.HexToAddress("0xbb"),
		Nonce:      nonce,
		GasLimit:   200000,
		Payload:    []byte{0x69, 0x69, 0x69},
	}
}

func testConfig(url string) Config {
	return Config{URL: url, RetryDelay: 10 * time.Millisecond, ReadTimeout: 5 * time.Second}
}

func TestSubscribePackets(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := newFeed(t)
	defer srv.Close()

	client := NewClient(testConfig(srv.url()))
	packets := client.SubscribePackets(context.Background(), 2)
	conn := srv.accept()

	req := <-srv.requests
	require.Equal(t, subscribeMethod, req.Method)
	require.Equal(t, []interface{}{packetsTopic, "0x2"}, req.Params)

	wrongChain := testPacket(1)
	wrongChain.DstChainID = 3
	notify(t, conn, wrongChain.ToJSON())
	notify(t, conn, "garbage")
	notify(t, conn, testPacket(0).ToJSON())
	notify(t, conn, testPacket(1).ToJSON())

	require.Equal(t, testPacket(1), receive(t, packets))

	require.NoError(t, client.Close())
	requireClosed(t, packets)
}

func TestReconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := newFeed(t)
	defer srv.Close()

	client := NewClient(testConfig(srv.url()))
	defer client.Close()

	packets := client.SubscribePackets(context.Background(), 2)

	conn := srv.accept()
	notify(t, conn, testPacket(1).ToJSON())
	require.Equal(t, uint64(1), receive(t, packets).Nonce)

	// Drop the connection; the client subscribes again.
	conn.Close()

	conn = srv.accept()
	notify(t, conn, testPacket(2).ToJSON())
	require.Equal(t, uint64(2), receive(t, packets).Nonce)

	require.NoError(t, client.Unsubscribe(context.Background(), 2))
	requireClosed(t, packets)
}

func TestContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := newFeed(t)
	defer srv.Close()

	client := NewClient(testConfig(srv.url()))
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	packets := client.SubscribePackets(ctx, 2)
	conn := srv.accept()

	cancel()

	// The reader notices the cancellation once the next message arrives.
	notify(t, conn, testPacket(1).ToJSON())
	requireClosed(t, packets)
}

func TestDialFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := newFeed(t)
	url := srv.url()
	srv.Close()

	client := NewClient(testConfig(url))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Subscribing keeps retrying until the context expires.
	packets := client.SubscribePackets(ctx, 2)
	requireClosed(t, packets)
	require.NoError(t, client.Close())
}
