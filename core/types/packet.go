package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Packet is an outbound message handed to the relay network. The receiving
// endpoint sees Path = SrcAddress ‖ DstAddress.
type Packet struct {
	SrcChainID uint16         `json:"srcChainId"`
	DstChainID uint16         `json:"dstChainId"`
	SrcAddress common.Address `json:"srcAddress"`
	DstAddress common.Address `json:"dstAddress"`
	Nonce      uint64         `json:"nonce"`
	GasLimit   uint64         `json:"gasLimit"`
	Payload    []byte         `json:"payload"`
}

// Path returns the source path as the destination endpoint will see it.
func (p *Packet) Path() []byte {
	return PackPath(p.SrcAddress, p.DstAddress)
}

// Message converts the packet into the message delivered to the receiver.
func (p *Packet) Message() *Message {
	return NewMessage(p.SrcChainID, p.Path(), p.Nonce, p.Payload)
}

// ID uniquely identifies a packet among all packets from its source path.
func (p *Packet) ID() PacketID {
	return PacketID{SrcChainID: p.SrcChainID, SrcAddress: p.SrcAddress, DstAddress: p.DstAddress, Nonce: p.Nonce}
}

// PacketID is a comparable packet coordinate.
type PacketID struct {
	SrcChainID uint16
	SrcAddress common.Address
	DstAddress common.Address
	Nonce      uint64
}

// PacketJSON is the hex encoded wire form of a packet used over JSON-RPC.
type PacketJSON struct {
	SrcChainID hexutil.Uint64 `json:"srcChainId"`
	DstChainID hexutil.Uint64 `json:"dstChainId"`
	SrcAddress common.Address `json:"srcAddress"`
	DstAddress common.Address `json:"dstAddress"`
	Nonce      hexutil.Uint64 `json:"nonce"`
	GasLimit   hexutil.Uint64 `json:"gasLimit"`
	Payload    hexutil.Bytes  `json:"payload"`
}

// ToJSON converts a packet into its wire form.
func (p *Packet) ToJSON() *PacketJSON {
	return &PacketJSON{
		SrcChainID: hexutil.Uint64(p.SrcChainID),
		DstChainID: hexutil.Uint64(p.DstChainID),
		SrcAddress: p.SrcAddress,
		DstAddress: p.DstAddress,
		Nonce:      hexutil.Uint64(p.Nonce),
		GasLimit:   hexutil.Uint64(p.GasLimit),
		Payload:    hexutil.Bytes(p.Payload),
	}
}

// Packet converts the wire form back. Chain ids above uint16 are truncated;
// callers validate before conversion.
func (j *PacketJSON) Packet() *Packet {
	return &Packet{
		SrcChainID: uint16(j.SrcChainID),
		DstChainID: uint16(j.DstChainID),
		SrcAddress: j.SrcAddress,
		DstAddress: j.DstAddress,
		Nonce:      uint64(j.Nonce),
		GasLimit:   uint64(j.GasLimit),
		Payload:    common.CopyBytes(j.Payload),
	}
}
