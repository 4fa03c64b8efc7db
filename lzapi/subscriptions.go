package lzapi

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/endpoint"
	"github.com/maticnetwork/lzapp/lzapp"
)

// logsChanSize is the size of channel listening to committed logs.
const logsChanSize = 128

// subscribe forwards committed logs accepted by filter to a new
// notification subscription.
func (api *API) subscribe(ctx context.Context, filter func(*types.Log) (interface{}, bool)) (*rpc.Subscription, error) {
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return &rpc.Subscription{}, rpc.ErrNotificationsUnsupported
	}
	rpcSub := notifier.CreateSubscription()

	logs := make(chan []*types.Log, logsChanSize)
	sub := api.b.Chain().SubscribeLogs(logs)

	go func() {
		defer sub.Unsubscribe()

		for {
			select {
			case batch := <-logs:
				for _, l := range batch {
					if data, ok := filter(l); ok {
						if err := notifier.Notify(rpcSub.ID, data); err != nil {
							log.Debug("Failed to notify subscriber", "id", rpcSub.ID, "err", err)
						}
					}
				}
			case <-rpcSub.Err():
				return
			case <-sub.Err():
				return
			}
		}
	}()

	return rpcSub, nil
}

// Packets notifies packets sent from this chain to dstChain that await a
// relayer.
func (api *API) Packets(ctx context.Context, dstChain hexutil.Uint64) (*rpc.Subscription, error) {
	id, err := chainID(dstChain)
	if err != nil {
		return nil, err
	}
	return api.subscribe(ctx, func(l *types.Log) (interface{}, bool) {
		ev, ok := l.Event.(*endpoint.PacketSent)
		if !ok || ev.Packet.DstChainID != id {
			return nil, false
		}
		return ev.Packet.ToJSON(), true
	})
}

// RPCMessageFailed is a message an application stored for retry.
type RPCMessageFailed struct {
	App        common.Address `json:"app"`
	SrcChainID hexutil.Uint64 `json:"srcChainId"`
	SrcPath    hexutil.Bytes  `json:"srcPath"`
	Nonce      hexutil.Uint64 `json:"nonce"`
	Payload    hexutil.Bytes  `json:"payload"`
	Reason     hexutil.Bytes  `json:"reason"`
}

// MessageFailed notifies failed messages of app, or of every application
// when app is omitted.
func (api *API) MessageFailed(ctx context.Context, app *common.Address) (*rpc.Subscription, error) {
	return api.subscribe(ctx, func(l *types.Log) (interface{}, bool) {
		ev, ok := l.Event.(*lzapp.MessageFailed)
		if !ok || (app != nil && l.Address != *app) {
			return nil, false
		}
		return &RPCMessageFailed{
			App:        l.Address,
			SrcChainID: hexutil.Uint64(ev.SrcChainID),
			SrcPath:    ev.SrcPath,
			Nonce:      hexutil.Uint64(ev.Nonce),
			Payload:    ev.Payload,
			Reason:     ev.Reason,
		}, true
	})
}
