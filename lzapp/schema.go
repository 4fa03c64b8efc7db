package lzapp

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// The fields below define the storage layout of an application contract.
var (
	ownerKey        = []byte("ow")
	pendingOwnerKey = []byte("po")
	precrimeKey     = []byte("pc")

	trustedRemotePrefix = []byte("tr") // trustedRemotePrefix + chainID (uint16 big endian) -> path
	failedMessagePrefix = []byte("fm") // failedMessagePrefix + messageKey -> payload hash
	receivedPrefix      = []byte("rc") // receivedPrefix + messageKey -> RLP(types.Delivery)
	preimagePrefix      = []byte("pi") // preimagePrefix + payload hash -> payload

	applicationPrefix = []byte("ap/") // applicationPrefix + key -> storage of the Application
)

// messageKeyLength is the size of a message key for an empty path.
const messageKeyLength = 2 + 4 + 8

// messageKey = chainID (uint16 big endian) + len(path) (uint32 big endian) + path + nonce (uint64 big endian)
func messageKey(chainID uint16, path []byte, nonce uint64) []byte {
	key := make([]byte, 0, messageKeyLength+len(path))
	key = binary.BigEndian.AppendUint16(key, chainID)
	key = binary.BigEndian.AppendUint32(key, uint32(len(path)))
	key = append(key, path...)
	return binary.BigEndian.AppendUint64(key, nonce)
}

// parseMessageKey is the inverse of messageKey.
func parseMessageKey(key []byte) (chainID uint16, path []byte, nonce uint64, ok bool) {
	if len(key) < messageKeyLength {
		return 0, nil, 0, false
	}
	pathLen := binary.BigEndian.Uint32(key[2:6])
	if uint64(len(key)) != uint64(messageKeyLength)+uint64(pathLen) {
		return 0, nil, 0, false
	}
	chainID = binary.BigEndian.Uint16(key[:2])
	path = common.CopyBytes(key[6 : 6+pathLen])
	nonce = binary.BigEndian.Uint64(key[6+pathLen:])
	return chainID, path, nonce, true
}

// ApplicationKey returns the storage slot holding key of the Application
// running in a contract.
func ApplicationKey(key []byte) []byte {
	return append(append([]byte{}, applicationPrefix...), key...)
}

func trustedRemoteKey(chainID uint16) []byte {
	return binary.BigEndian.AppendUint16(append([]byte{}, trustedRemotePrefix...), chainID)
}

func failedMessageKey(chainID uint16, path []byte, nonce uint64) []byte {
	return append(append([]byte{}, failedMessagePrefix...), messageKey(chainID, path, nonce)...)
}

func receivedKey(chainID uint16, path []byte, nonce uint64) []byte {
	return append(append([]byte{}, receivedPrefix...), messageKey(chainID, path, nonce)...)
}

func preimageKey(hash common.Hash) []byte {
	return append(append([]byte{}, preimagePrefix...), hash.Bytes()...)
}
