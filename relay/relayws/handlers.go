package relayws

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/maticnetwork/lzapp/core/types"
)

var (
	errDecode          = errors.New("invalid message")
	errSubscription    = errors.New("subscription failed")
	errInvalidPacket   = errors.New("invalid packet")
	errUnexpectedChain = errors.New("packet for another chain")
)

// handleMessage processes one message read from the subscription. It returns
// a nil packet for messages that carry none.
func handleMessage(dstChainID uint16, message []byte) (*types.Packet, error) {
	msg := new(wsMessage)
	if err := json.Unmarshal(message, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", errDecode, err)
	}

	switch {
	case msg.Error != nil:
		return nil, fmt.Errorf("%w: %s (code %d)", errSubscription, msg.Error.Message, msg.Error.Code)
	case msg.Method == "":
		return nil, handleSubscribed(msg)
	case msg.Method == notificationMethod:
		return handlePacket(dstChainID, msg)
	default:
		return nil, fmt.Errorf("%w: unexpected method %q", errDecode, msg.Method)
	}
}

// handleSubscribed processes the response to the subscription request.
func handleSubscribed(msg *wsMessage) error {
	var id string
	if err := json.Unmarshal(msg.Result, &id); err != nil {
		return fmt.Errorf("%w: subscription id: %v", errDecode, err)
	}
	log.Debug("Subscribed to relay packets", "id", id)
	return nil
}

// handlePacket decodes and validates a packet notification.
func handlePacket(dstChainID uint16, msg *wsMessage) (*types.Packet, error) {
	if msg.Params == nil {
		return nil, fmt.Errorf("%w: notification without params", errDecode)
	}
	enc := new(types.PacketJSON)
	if err := json.Unmarshal(msg.Params.Result, enc); err != nil {
		return nil, fmt.Errorf("%w: packet: %v", errDecode, err)
	}
	if err := validatePacket(dstChainID, enc); err != nil {
		log.Warn("Dropping relayed packet", "subscription", msg.Params.Subscription, "nonce", uint64(enc.Nonce), "err", err)
		return nil, err
	}
	return enc.Packet(), nil
}

func validatePacket(dstChainID uint16, p *types.PacketJSON) error {
	if p.SrcChainID > math.MaxUint16 || p.DstChainID > math.MaxUint16 {
		return fmt.Errorf("%w: chain id out of range", errInvalidPacket)
	}
	if uint16(p.DstChainID) != dstChainID {
		return fmt.Errorf("%w: have %d, want %d", errUnexpectedChain, p.DstChainID, dstChainID)
	}
	if p.Nonce == 0 {
		return fmt.Errorf("%w: zero nonce", errInvalidPacket)
	}
	if p.DstAddress == (common.Address{}) {
		return fmt.Errorf("%w: zero destination", errInvalidPacket)
	}
	return nil
}
