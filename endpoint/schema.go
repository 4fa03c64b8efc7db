package endpoint

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// Storage layout of the local endpoint contract.
var (
	inboundNoncePrefix  = []byte("in") // inboundNoncePrefix + srcChainID (uint16 big endian) + path -> nonce
	outboundNoncePrefix = []byte("on") // outboundNoncePrefix + dstChainID + ua -> nonce
	storedPayloadPrefix = []byte("sp") // storedPayloadPrefix + srcChainID + path -> RLP(storedPayload)
	queuePrefix         = []byte("qu") // queuePrefix + srcChainID + path -> RLP([]queuedPayload)
	dstEndpointPrefix   = []byte("de") // dstEndpointPrefix + ua -> endpoint address
	configPrefix        = []byte("cf") // configPrefix + ua + version + chainID + configType -> config
	sendVersionPrefix   = []byte("sv") // sendVersionPrefix + ua -> version
	recvVersionPrefix   = []byte("rv") // recvVersionPrefix + ua -> version

	blockNextKey = []byte("bn")
)

func chainPathKey(prefix []byte, chainID uint16, path []byte) []byte {
	key := make([]byte, 0, len(prefix)+2+len(path))
	key = append(key, prefix...)
	key = binary.BigEndian.AppendUint16(key, chainID)
	return append(key, path...)
}

func inboundNonceKey(srcChainID uint16, path []byte) []byte {
	return chainPathKey(inboundNoncePrefix, srcChainID, path)
}

func outboundNonceKey(dstChainID uint16, ua common.Address) []byte {
	return chainPathKey(outboundNoncePrefix, dstChainID, ua.Bytes())
}

func storedPayloadKey(srcChainID uint16, path []byte) []byte {
	return chainPathKey(storedPayloadPrefix, srcChainID, path)
}

func queueKey(srcChainID uint16, path []byte) []byte {
	return chainPathKey(queuePrefix, srcChainID, path)
}

func dstEndpointKey(ua common.Address) []byte {
	return append(append([]byte{}, dstEndpointPrefix...), ua.Bytes()...)
}

func configKey(ua common.Address, version, chainID uint16, configType uint64) []byte {
	key := append(append([]byte{}, configPrefix...), ua.Bytes()...)
	key = binary.BigEndian.AppendUint16(key, version)
	key = binary.BigEndian.AppendUint16(key, chainID)
	return binary.BigEndian.AppendUint64(key, configType)
}

func versionKey(prefix []byte, ua common.Address) []byte {
	return append(append([]byte{}, prefix...), ua.Bytes()...)
}

func encodeUint64(n uint64) []byte {
	if n == 0 {
		return nil
	}
	return binary.BigEndian.AppendUint64(nil, n)
}

func decodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func encodeUint16(n uint16) []byte {
	if n == 0 {
		return nil
	}
	return binary.BigEndian.AppendUint16(nil, n)
}

func decodeUint16(b []byte) uint16 {
	if len(b) != 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}
