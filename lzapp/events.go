package lzapp

import "github.com/ethereum/go-ethereum/common"

type OwnershipTransferStarted struct {
	PreviousOwner common.Address
	NewOwner      common.Address
}

type OwnershipTransferred struct {
	PreviousOwner common.Address
	NewOwner      common.Address
}

type SetTrustedRemote struct {
	ChainID uint16
	Path    []byte
}

type SetPrecrime struct {
	Precrime common.Address
}

// MessageFailed is logged when an admitted message fails to apply and is
// queued for retry. Reason holds the revert data of the failure.
type MessageFailed struct {
	SrcChainID uint16
	SrcPath    []byte
	Nonce      uint64
	Payload    []byte
	Reason     []byte
}

type RetryMessageSuccess struct {
	SrcChainID  uint16
	SrcPath     []byte
	Nonce       uint64
	PayloadHash common.Hash
}

// FailedMessageCleared is logged when a failed message is dropped without
// being applied.
type FailedMessageCleared struct {
	SrcChainID  uint16
	SrcPath     []byte
	Nonce       uint64
	PayloadHash common.Hash
}
