package endpoint

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/maticnetwork/lzapp/core/types"
)

var (
	ErrInvalidPath        = errors.New("endpoint: incorrect remote address size")
	ErrInsufficientFee    = errors.New("endpoint: not enough native for fees")
	ErrAirdropCap         = errors.New("endpoint: dst native amount too large")
	ErrWrongNonce         = errors.New("endpoint: wrong nonce")
	ErrUnknownRelayer     = errors.New("endpoint: caller is not a relayer")
	ErrNoStoredPayload    = errors.New("endpoint: no stored payload")
	ErrInvalidPayload     = errors.New("endpoint: invalid payload")
	ErrInvalidCaller      = errors.New("endpoint: invalid caller")
	ErrNoReceiver         = errors.New("endpoint: destination is not a receiver")
	ErrUnknownDstEndpoint = errors.New("endpoint: destination endpoint not found")
)

// Sending is logged for every accepted Send.
type Sending struct {
	DstChainID        uint16
	Destination       []byte
	Payload           []byte
	RefundAddress     common.Address
	ZroPaymentAddress common.Address
	AdapterParams     []byte
	NativeFee         *uint256.Int
	Value             *uint256.Int
}

// PacketSent is logged when a packet leaves the chain through the relay
// network.
type PacketSent struct {
	Packet *types.Packet
}

// PayloadStored is logged when a delivery fails and blocks its path.
type PayloadStored struct {
	SrcChainID uint16
	SrcPath    []byte
	DstAddress common.Address
	Nonce      uint64
	Payload    []byte
	Reason     []byte
}

// PayloadCleared is logged when a stored payload is retried successfully.
type PayloadCleared struct {
	SrcChainID uint16
	SrcPath    []byte
	Nonce      uint64
	DstAddress common.Address
}

// UaForceResumeReceive is logged when an application drops its blocking
// payload.
type UaForceResumeReceive struct {
	SrcChainID uint16
	SrcPath    []byte
}
