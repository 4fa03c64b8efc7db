package lzapp

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
)

// SetTrustedRemote replaces the trusted path of chainID. The path is stored
// as given: remote address followed by this application's address. An empty
// path removes the entry.
func (a *LzApp) SetTrustedRemote(f *host.Frame, chainID uint16, path []byte) error {
	if err := a.onlyOwner(f); err != nil {
		return err
	}
	f.Set(trustedRemoteKey(chainID), path)
	f.Emit(&SetTrustedRemote{ChainID: chainID, Path: common.CopyBytes(path)})
	a.log.Info("Trusted remote set", "chain", chainID, "path", hexutil.Bytes(path))
	return nil
}

// SetTrustedRemoteAddress trusts remote on chainID, packing the path with
// this application's address.
func (a *LzApp) SetTrustedRemoteAddress(f *host.Frame, chainID uint16, remote []byte) error {
	path := make([]byte, 0, len(remote)+common.AddressLength)
	path = append(path, remote...)
	path = append(path, a.addr.Bytes()...)
	return a.SetTrustedRemote(f, chainID, path)
}

// TrustedRemote returns the trusted path of chainID, or nil.
func (a *LzApp) TrustedRemote(r state.Reader, chainID uint16) []byte {
	return r.GetState(a.addr, trustedRemoteKey(chainID))
}

// GetTrustedRemoteAddress returns the remote part of the trusted path.
func (a *LzApp) GetTrustedRemoteAddress(r state.Reader, chainID uint16) ([]byte, error) {
	path := a.TrustedRemote(r, chainID)
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: chain %d", ErrNoTrustedPath, chainID)
	}
	remote, err := types.RemoteAddress(path)
	if err != nil {
		return nil, fmt.Errorf("%w: chain %d", ErrNoTrustedPath, chainID)
	}
	return remote, nil
}

// IsTrustedRemote reports whether path is exactly the trusted path of
// chainID. A chain without a trusted path matches nothing.
func (a *LzApp) IsTrustedRemote(r state.Reader, chainID uint16, path []byte) bool {
	trusted := a.TrustedRemote(r, chainID)
	return len(trusted) > 0 && bytes.Equal(trusted, path)
}

// AssertTrustedRemote is IsTrustedRemote returning ErrNotTrustedRemote on
// mismatch.
func (a *LzApp) AssertTrustedRemote(r state.Reader, chainID uint16, path []byte) error {
	if !a.IsTrustedRemote(r, chainID, path) {
		return fmt.Errorf("%w: chain %d path %s", ErrNotTrustedRemote, chainID, hexutil.Bytes(path))
	}
	return nil
}
