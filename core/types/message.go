package types

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Message represents a payload delivered by the endpoint from a remote chain.
type Message struct {
	SrcChainID uint16
	SrcPath    []byte // remote UA address ‖ local UA address
	Nonce      uint64
	Payload    []byte
}

// wire shape for RLP
type encMessage struct {
	SrcChainID uint16
	SrcPath    []byte
	Nonce      uint64
	Payload    []byte
}

// NewMessage copies the given byte slices so the message does not alias
// caller memory.
func NewMessage(srcChainID uint16, srcPath []byte, nonce uint64, payload []byte) *Message {
	return &Message{
		SrcChainID: srcChainID,
		SrcPath:    common.CopyBytes(srcPath),
		Nonce:      nonce,
		Payload:    common.CopyBytes(payload),
	}
}

// PayloadHash returns the keccak256 hash of the payload. This is the value
// persisted for failed messages.
func (m *Message) PayloadHash() common.Hash {
	return PayloadHash(m.Payload)
}

// PayloadHash returns the keccak256 hash of a payload.
func PayloadHash(payload []byte) common.Hash {
	return crypto.Keccak256Hash(payload)
}

// EncodeRLP implements rlp.Encoder.
func (m *Message) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &encMessage{
		SrcChainID: m.SrcChainID,
		SrcPath:    m.SrcPath,
		Nonce:      m.Nonce,
		Payload:    m.Payload,
	})
}

// DecodeRLP implements rlp.Decoder.
func (m *Message) DecodeRLP(s *rlp.Stream) error {
	var enc encMessage
	if err := s.Decode(&enc); err != nil {
		return err
	}
	m.SrcChainID, m.SrcPath, m.Nonce, m.Payload = enc.SrcChainID, enc.SrcPath, enc.Nonce, enc.Payload
	return nil
}

// FailedMessage is a pending retry as listed from committed state.
type FailedMessage struct {
	SrcChainID  uint16      `json:"srcChainId"`
	SrcPath     []byte      `json:"srcPath"`
	Nonce       uint64      `json:"nonce"`
	PayloadHash common.Hash `json:"payloadHash"`
}

// Delivery records the last payload applied for a message coordinate.
type Delivery struct {
	From    common.Address // immediate caller of the receive path
	Payload []byte
}
