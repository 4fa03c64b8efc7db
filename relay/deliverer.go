// Package relay moves packets announced by a source chain into the endpoint
// of the destination chain.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/endpoint"
)

var (
	// ErrDuplicatePacket is returned for a packet delivered recently.
	ErrDuplicatePacket = errors.New("packet already delivered")

	// ErrWrongChain is returned for a packet addressed to another chain.
	ErrWrongChain = errors.New("packet destined for another chain")
)

var (
	deliveredCounter = metrics.NewRegisteredCounter("relay/packets/delivered", nil)
	duplicateCounter = metrics.NewRegisteredCounter("relay/packets/duplicate", nil)
	failedCounter    = metrics.NewRegisteredCounter("relay/packets/failed", nil)
)

// Config tunes a Deliverer.
type Config struct {
	Relayer   common.Address // sender of ReceivePayload transactions
	SeenTTL   time.Duration  `toml:",omitempty"`
	SeenLimit uint64         `toml:",omitempty"`
	RateLimit float64        `toml:",omitempty"` // packets per second, zero is unlimited
}

// DefaultConfig is the deliverer configuration used by the node.
var DefaultConfig = Config{
	SeenTTL:   10 * time.Minute,
	SeenLimit: 16384,
}

func (c Config) sanitize() Config {
	if c.SeenTTL <= 0 {
		c.SeenTTL = DefaultConfig.SeenTTL
	}
	if c.SeenLimit == 0 {
		c.SeenLimit = DefaultConfig.SeenLimit
	}
	return c
}

// Deliverer hands relayed packets to the local endpoint, one transaction per
// packet.
type Deliverer struct {
	chain    *host.Chain
	endpoint *endpoint.Local
	relayer  common.Address

	seen    *ttlcache.Cache[types.PacketID, struct{}]
	limiter *rate.Limiter // nil when unlimited
	log     log.Logger
}

// NewDeliverer creates a deliverer. The relayer must be allowed by ep.
func NewDeliverer(chain *host.Chain, ep *endpoint.Local, cfg Config) *Deliverer {
	cfg = cfg.sanitize()
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}
	return &Deliverer{
		chain:    chain,
		endpoint: ep,
		relayer:  cfg.Relayer,
		seen: ttlcache.New[types.PacketID, struct{}](
			ttlcache.WithTTL[types.PacketID, struct{}](cfg.SeenTTL),
			ttlcache.WithCapacity[types.PacketID, struct{}](cfg.SeenLimit),
		),
		limiter: limiter,
		log:     log.New("chain", ep.ChainID(), "relayer", cfg.Relayer),
	}
}

// Deliver submits a single packet to the endpoint.
func (d *Deliverer) Deliver(p *types.Packet) error {
	if p.DstChainID != d.endpoint.ChainID() {
		return fmt.Errorf("%w: %d", ErrWrongChain, p.DstChainID)
	}
	id := p.ID()
	if d.seen.Has(id) {
		duplicateCounter.Inc(1)
		return ErrDuplicatePacket
	}
	_, err := d.chain.Transact(d.relayer, d.endpoint.Address(), nil, func(f *host.Frame) error {
		return d.endpoint.ReceivePayload(f, p.SrcChainID, p.Path(), p.DstAddress, p.Nonce, p.GasLimit, p.Payload)
	})
	if err != nil {
		failedCounter.Inc(1)
		return err
	}
	d.seen.Set(id, struct{}{}, ttlcache.DefaultTTL)
	deliveredCounter.Inc(1)

	return nil
}

// Run follows the packet feed of client until ctx is cancelled or the feed
// closes. Delivery failures are logged and skipped.
func (d *Deliverer) Run(ctx context.Context, client IRelayClient) {
	go d.seen.Start()
	defer d.seen.Stop()

	packets := client.SubscribePackets(ctx, d.endpoint.ChainID())
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-packets:
			if !ok {
				d.log.Info("Relay feed closed")
				return
			}
			if d.limiter != nil {
				if err := d.limiter.Wait(ctx); err != nil {
					return
				}
			}
			switch err := d.Deliver(p); {
			case err == nil:
				d.log.Debug("Delivered packet", "src", p.SrcChainID, "srcAddress", p.SrcAddress, "dst", p.DstAddress, "nonce", p.Nonce)
			case errors.Is(err, ErrDuplicatePacket):
				d.log.Debug("Skipping duplicate packet", "src", p.SrcChainID, "srcAddress", p.SrcAddress, "nonce", p.Nonce)
			default:
				d.log.Error("Failed to deliver packet",
					"src", p.SrcChainID,
					"srcAddress", p.SrcAddress,
					"dst", p.DstAddress,
					"nonce", p.Nonce,
					"err", err,
				)
			}
		}
	}
}
