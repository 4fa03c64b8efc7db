package lzapp

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
)

// callEndpoint enters the endpoint contract from the application.
func (a *LzApp) callEndpoint(f *host.Frame, fn func(ef *host.Frame) error) error {
	return f.Call(a.endpoint.Address(), nil, fn)
}

// SetConfig forwards a relay configuration value to the endpoint.
func (a *LzApp) SetConfig(f *host.Frame, version uint16, chainID uint16, configType uint64, config []byte) error {
	if err := a.onlyOwner(f); err != nil {
		return err
	}
	return a.callEndpoint(f, func(ef *host.Frame) error {
		return a.endpoint.SetConfig(ef, version, chainID, configType, config)
	})
}

// GetConfig reads the application's relay configuration from the endpoint.
func (a *LzApp) GetConfig(r state.Reader, version uint16, chainID uint16, configType uint64) ([]byte, error) {
	return a.endpoint.GetConfig(r, version, chainID, a.addr, configType)
}

func (a *LzApp) SetSendVersion(f *host.Frame, version uint16) error {
	if err := a.onlyOwner(f); err != nil {
		return err
	}
	return a.callEndpoint(f, func(ef *host.Frame) error {
		return a.endpoint.SetSendVersion(ef, version)
	})
}

func (a *LzApp) SetReceiveVersion(f *host.Frame, version uint16) error {
	if err := a.onlyOwner(f); err != nil {
		return err
	}
	return a.callEndpoint(f, func(ef *host.Frame) error {
		return a.endpoint.SetReceiveVersion(ef, version)
	})
}

// ForceResumeReceive asks the endpoint to drop the payload blocking srcPath.
func (a *LzApp) ForceResumeReceive(f *host.Frame, srcChainID uint16, srcPath []byte) error {
	if err := a.onlyOwner(f); err != nil {
		return err
	}
	return a.callEndpoint(f, func(ef *host.Frame) error {
		return a.endpoint.ForceResumeReceive(ef, srcChainID, srcPath)
	})
}

// SetPrecrime sets the validator consulted on admission. The zero address
// disables the check.
func (a *LzApp) SetPrecrime(f *host.Frame, precrime common.Address) error {
	if err := a.onlyOwner(f); err != nil {
		return err
	}
	if precrime == (common.Address{}) {
		f.Set(precrimeKey, nil)
	} else {
		f.Set(precrimeKey, precrime.Bytes())
	}
	f.Emit(&SetPrecrime{Precrime: precrime})
	return nil
}

// Precrime returns the configured validator address.
func (a *LzApp) Precrime(r state.Reader) common.Address {
	return common.BytesToAddress(r.GetState(a.addr, precrimeKey))
}
