package types

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Adapter parameter transaction types.
const (
	TxTypeStandard uint16 = 1
	TxTypeAirdrop  uint16 = 2
)

const (
	standardParamsLength = 2 + 32
	airdropParamsLength  = 2 + 32 + 32 + common.AddressLength
)

var (
	ErrInvalidAdapterParams = errors.New("invalid adapter params")
	ErrUnsupportedTxType    = errors.New("unsupported adapter params tx type")
	ErrGasTooLow            = errors.New("adapter params gas too low")
)

// AdapterParams tells the relayer how to execute a message on the destination
// chain: the gas to forward, and optionally native tokens to airdrop.
type AdapterParams struct {
	TxType         uint16
	ExtraGas       *uint256.Int
	AirdropAmount  *uint256.Int
	AirdropAddress common.Address
}

// DefaultAdapterParams encodes type 1 params forwarding gas to the receiver.
func DefaultAdapterParams(gas uint64) []byte {
	buf := make([]byte, standardParamsLength)
	binary.BigEndian.PutUint16(buf, TxTypeStandard)
	g := uint256.NewInt(gas).Bytes32()
	copy(buf[2:], g[:])
	return buf
}

// AirdropAdapterParams encodes type 2 params.
func AirdropAdapterParams(gas uint64, amount *uint256.Int, to common.Address) []byte {
	buf := make([]byte, 0, airdropParamsLength)
	buf = binary.BigEndian.AppendUint16(buf, TxTypeAirdrop)
	g := uint256.NewInt(gas).Bytes32()
	buf = append(buf, g[:]...)
	a := amount.Bytes32()
	buf = append(buf, a[:]...)
	return append(buf, to.Bytes()...)
}

// DecodeAdapterParams parses packed adapter params. Accepted lengths are 34
// bytes, or anything above 66 bytes; airdrop params need the trailing address.
func DecodeAdapterParams(raw []byte) (*AdapterParams, error) {
	if len(raw) != standardParamsLength && len(raw) <= 66 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidAdapterParams, len(raw))
	}
	p := &AdapterParams{
		TxType:        binary.BigEndian.Uint16(raw[:2]),
		ExtraGas:      new(uint256.Int).SetBytes(raw[2:34]),
		AirdropAmount: new(uint256.Int),
	}
	switch p.TxType {
	case TxTypeStandard:
	case TxTypeAirdrop:
		if len(raw) < airdropParamsLength {
			return nil, fmt.Errorf("%w: airdrop params length %d", ErrInvalidAdapterParams, len(raw))
		}
		p.AirdropAmount.SetBytes(raw[34:66])
		p.AirdropAddress = common.BytesToAddress(raw[66:airdropParamsLength])
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTxType, p.TxType)
	}
	if p.ExtraGas.IsZero() {
		return nil, ErrGasTooLow
	}
	return p, nil
}
