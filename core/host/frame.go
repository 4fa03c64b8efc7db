package host

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
)

// MaxCallDepth is the maximum nesting of contract calls.
const MaxCallDepth = 1024

var (
	// ErrDepth is returned when a call exceeds MaxCallDepth.
	ErrDepth = errors.New("max call depth exceeded")

	// ErrExecutionPanic wraps a panic raised by contract code.
	ErrExecutionPanic = errors.New("execution panicked")
)

// Frame is the execution context of one contract call.
type Frame struct {
	chain  *Chain
	state  *state.StateDB
	depth  int
	prefix []byte // storage namespace of Get and Set

	Caller common.Address // immediate caller, msg.sender
	Self   common.Address // executing contract, address(this)
	Value  *uint256.Int   // value attached to the call, never nil
}

func newFrame(c *Chain, statedb *state.StateDB, caller, self common.Address, value *uint256.Int, depth int) *Frame {
	if value == nil {
		value = new(uint256.Int)
	}
	return &Frame{
		chain:  c,
		state:  statedb,
		depth:  depth,
		Caller: caller,
		Self:   self,
		Value:  value,
	}
}

// Chain returns the chain the frame executes on.
func (f *Frame) Chain() *Chain { return f.chain }

// State returns the transaction state.
func (f *Frame) State() *state.StateDB { return f.state }

// Depth returns the call depth, 0 for the transaction's outermost frame.
func (f *Frame) Depth() int { return f.depth }

// Get reads a storage slot of the executing contract.
func (f *Frame) Get(key []byte) []byte {
	return f.state.GetState(f.Self, f.key(key))
}

// Set writes a storage slot of the executing contract. An empty value clears
// the slot.
func (f *Frame) Set(key []byte, value []byte) {
	f.state.SetState(f.Self, f.key(key), value)
}

// Namespace returns a view of f whose Get and Set operate on the slots
// starting with prefix. Calls made from the view start outside it.
func (f *Frame) Namespace(prefix []byte) *Frame {
	cpy := *f
	cpy.prefix = append(common.CopyBytes(f.prefix), prefix...)
	return &cpy
}

func (f *Frame) key(key []byte) []byte {
	if len(f.prefix) == 0 {
		return key
	}
	return append(common.CopyBytes(f.prefix), key...)
}

// Emit records an event log attributed to the executing contract.
func (f *Frame) Emit(event interface{}) {
	f.state.AddLog(&types.Log{Address: f.Self, Event: event})
}

// Call runs fn as a call from the executing contract into `to`. If fn fails
// every state change and log made by it is reverted, and the error is
// returned for the caller to propagate or absorb.
func (f *Frame) Call(to common.Address, value *uint256.Int, fn func(*Frame) error) error {
	if f.depth+1 > MaxCallDepth {
		return ErrDepth
	}
	snapshot := f.state.Snapshot()
	child := newFrame(f.chain, f.state, f.Self, to, value, f.depth+1)

	if err := execute(child, fn); err != nil {
		f.state.RevertToSnapshot(snapshot)
		return err
	}
	return nil
}

// ExecutionResult is the outcome of a call whose failure is captured rather
// than propagated.
type ExecutionResult struct {
	Err        error  // nil if the call succeeded
	ReturnData []byte // revert data if the call failed
}

// Failed reports whether the call failed.
func (r *ExecutionResult) Failed() bool { return r.Err != nil }

// Unwrap returns the call error.
func (r *ExecutionResult) Unwrap() error { return r.Err }

// Revert returns the revert data of a failed call.
func (r *ExecutionResult) Revert() []byte {
	if r.Err == nil {
		return nil
	}
	return common.CopyBytes(r.ReturnData)
}

// TryCall runs fn like Call but captures the failure in the result. The
// caller's state stays as it was before the call.
func (f *Frame) TryCall(to common.Address, value *uint256.Int, fn func(*Frame) error) *ExecutionResult {
	err := f.Call(to, value, fn)
	if err != nil {
		log.Debug("Inner call failed", "from", f.Self, "to", to, "depth", f.depth+1, "err", err)
		return &ExecutionResult{Err: err, ReturnData: RevertData(err)}
	}
	return &ExecutionResult{}
}

func execute(f *Frame, fn func(*Frame) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExecutionPanic, r)
		}
	}()
	return fn(f)
}
