package host

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// revertSelector is the 4-byte selector of Error(string).
var revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

var stringArgs abi.Arguments

func init() {
	t, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	stringArgs = abi.Arguments{{Type: t}}
}

// RevertError is a failure carrying EVM style revert data.
type RevertError struct {
	reason string
	data   []byte
}

// Revert returns an error whose revert data is the ABI encoding of
// Error(reason), like a solidity `revert(reason)`.
func Revert(reason string) error {
	return &RevertError{reason: reason, data: encodeRevert(reason)}
}

// RevertWithData returns an error carrying raw revert data.
func RevertWithData(data []byte) error {
	reason, err := abi.UnpackRevert(data)
	if err != nil {
		reason = hexutil.Encode(data)
	}
	return &RevertError{reason: reason, data: data}
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.reason
}

// Reason returns the decoded revert reason.
func (e *RevertError) Reason() string { return e.reason }

// ErrorData returns the raw revert data.
func (e *RevertError) ErrorData() []byte { return e.data }

// RevertData returns the revert data describing err. Errors that do not carry
// revert data are encoded as Error(err.Error()).
func RevertData(err error) []byte {
	if err == nil {
		return nil
	}
	var rerr *RevertError
	if errors.As(err, &rerr) {
		return rerr.data
	}
	return encodeRevert(err.Error())
}

func encodeRevert(reason string) []byte {
	packed, err := stringArgs.Pack(reason)
	if err != nil {
		panic(fmt.Errorf("failed to pack revert reason: %w", err))
	}
	return append(append([]byte{}, revertSelector...), packed...)
}
