// Package relayws follows the packet feed of a remote node over a websocket
// JSON-RPC subscription.
package relayws

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/websocket"

	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/relay"
)

var _ relay.IRelayClient = (*Client)(nil)

// Config configures a Client.
type Config struct {
	URL         string
	RetryDelay  time.Duration `toml:",omitempty"` // pause between reconnection attempts
	ReadTimeout time.Duration `toml:",omitempty"` // silence tolerated before reconnecting
}

// DefaultConfig holds the default reconnection settings.
var DefaultConfig = Config{
	RetryDelay:  10 * time.Second,
	ReadTimeout: 60 * time.Second,
}

type packetSubscription struct {
	conn *websocket.Conn
	done chan struct{}
}

// Client represents a websocket client with auto-reconnection.
type Client struct {
	subscriptions map[uint16]packetSubscription
	cfg           Config
	done          chan struct{}
	mu            sync.Mutex
	closeOnce     sync.Once
}

// NewClient creates a new relay feed client.
func NewClient(cfg Config) *Client {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultConfig.RetryDelay
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultConfig.ReadTimeout
	}
	return &Client{
		subscriptions: make(map[uint16]packetSubscription),
		cfg:           cfg,
		done:          make(chan struct{}),
	}
}

func (c *Client) getSubscription(dstChainID uint16) (packetSubscription, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subscriptions[dstChainID]
	return sub, ok
}

// SubscribePackets subscribes to packets destined for dstChainID and returns
// the channel they are delivered on. The channel is closed when ctx is
// cancelled, the subscription is dropped or the client is closed.
func (c *Client) SubscribePackets(ctx context.Context, dstChainID uint16) <-chan *types.Packet {
	c.tryUntilSubscribe(ctx, dstChainID)

	packets := make(chan *types.Packet)
	go c.readPackets(ctx, dstChainID, packets)

	return packets
}

// tryUntilSubscribe endlessly tries to establish the websocket connection for
// dstChainID and send the subscription request.
func (c *Client) tryUntilSubscribe(ctx context.Context, dstChainID uint16) {
	firstTime := true
	for {
		if !firstTime {
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
			case <-c.done:
			}
		}
		firstTime = false

		select {
		case <-ctx.Done():
			log.Info("Context cancelled during reconnection", "chain", dstChainID)
			return
		case <-c.done:
			log.Info("Client closed during reconnection", "chain", dstChainID)
			return
		default:
		}

		if sub, ok := c.getSubscription(dstChainID); ok {
			select {
			case <-sub.done:
				log.Info("Client unsubscribed during reconnection", "chain", dstChainID)
				return
			default:
			}
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			log.Error("Failed to dial relay feed", "url", c.cfg.URL, "chain", dstChainID, "err", err)
			continue
		}
		if err := conn.WriteJSON(newPacketsRequest(1, dstChainID)); err != nil {
			log.Error("Failed to send relay subscription request", "chain", dstChainID, "err", err)
			conn.Close()
			continue
		}
		conn.SetPingHandler(func(data string) error {
			conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
			return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		})

		c.mu.Lock()
		sub, ok := c.subscriptions[dstChainID]
		if !ok {
			sub.done = make(chan struct{})
		}
		sub.conn = conn
		c.subscriptions[dstChainID] = sub
		c.mu.Unlock()

		log.Info("Connected to relay feed", "url", c.cfg.URL, "chain", dstChainID)
		return
	}
}

// readPackets continuously reads messages from the websocket, reconnecting
// when the connection is lost.
func (c *Client) readPackets(ctx context.Context, dstChainID uint16, packets chan *types.Packet) {
	defer close(packets)

	sub, ok := c.getSubscription(dstChainID)
	if !ok || sub.conn == nil {
		c.tryUntilSubscribe(ctx, dstChainID)
		if sub, ok = c.getSubscription(dstChainID); !ok {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-sub.done:
			return
		default:
		}

		conn := sub.conn
		conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-sub.done:
				return
			case <-c.done:
				return
			default:
			}
			log.Warn("Relay feed connection lost, reconnecting", "chain", dstChainID, "err", err)
			conn.Close()

			c.tryUntilSubscribe(ctx, dstChainID)
			if sub, ok = c.getSubscription(dstChainID); !ok {
				return
			}
			continue
		}

		packet, err := handleMessage(dstChainID, message)
		if err != nil {
			log.Debug("Skipping relay feed message", "chain", dstChainID, "err", err)
			continue
		}
		if packet == nil {
			continue
		}

		select {
		case packets <- packet:
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		}
	}
}

// Unsubscribe terminates the listener for dstChainID.
func (c *Client) Unsubscribe(ctx context.Context, dstChainID uint16) error {
	c.mu.Lock()
	sub, ok := c.subscriptions[dstChainID]
	delete(c.subscriptions, dstChainID)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	close(sub.done)

	if err := sub.conn.Close(); err != nil {
		log.Error("Failed to close websocket connection", "chain", dstChainID, "err", err)
		return err
	}
	return nil
}

// Close terminates all listeners and connections.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		close(c.done)

		for chainID, sub := range c.subscriptions {
			if err := sub.conn.Close(); err != nil {
				log.Error("Failed to close websocket connection", "chain", chainID, "err", err)
			}
			close(sub.done)
		}
		c.subscriptions = make(map[uint16]packetSubscription)
	})
	return nil
}
