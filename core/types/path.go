package types

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// PathLength is the size of a packed remote path: two addresses.
const PathLength = 2 * common.AddressLength

var ErrPathLength = errors.New("invalid path length")

// PackPath concatenates the remote address and the local address, the way
// abi.encodePacked(address,address) does.
func PackPath(remote, local common.Address) []byte {
	path := make([]byte, 0, PathLength)
	path = append(path, remote.Bytes()...)
	return append(path, local.Bytes()...)
}

// RemoteAddress returns the remote part of a path, i.e. everything except the
// trailing local address. It does not require the remote part to be 20 bytes.
func RemoteAddress(path []byte) ([]byte, error) {
	if len(path) <= common.AddressLength {
		return nil, ErrPathLength
	}
	return common.CopyBytes(path[:len(path)-common.AddressLength]), nil
}

// SplitPath splits a 40 byte path into its two addresses.
func SplitPath(path []byte) (first, second common.Address, err error) {
	if len(path) != PathLength {
		return common.Address{}, common.Address{}, ErrPathLength
	}
	return common.BytesToAddress(path[:common.AddressLength]), common.BytesToAddress(path[common.AddressLength:]), nil
}
