package relay

import (
	"context"

	"github.com/maticnetwork/lzapp/core/types"
)

//go:generate mockgen -source=IRelayClient.go -destination=mocks/relay_client.go -package=mocks . IRelayClient
type IRelayClient interface {
	SubscribePackets(ctx context.Context, dstChainID uint16) <-chan *types.Packet
	Unsubscribe(ctx context.Context, dstChainID uint16) error
	Close() error
}
