// Package host runs contract code against journaled state. A Chain serializes
// transactions the way a block does: every transaction sees the effects of
// the previous one, and a failing transaction leaves no trace.
package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"

	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
)

var (
	// ErrNoContract is returned when a transaction targets an address with no
	// registered contract.
	ErrNoContract = errors.New("no contract at address")

	// ErrContractExists is returned when deploying onto an occupied address.
	ErrContractExists = errors.New("contract already deployed")
)

var (
	txCommittedCounter = metrics.NewRegisteredCounter("host/tx/committed", nil)
	txRevertedCounter  = metrics.NewRegisteredCounter("host/tx/reverted", nil)
	txLogsCounter      = metrics.NewRegisteredCounter("host/tx/logs", nil)
)

// Chain is a single execution ledger hosting contracts at addresses.
type Chain struct {
	db ethdb.KeyValueStore

	lock      sync.Mutex // serializes transactions
	sendLock  sync.Mutex // orders log publication
	contracts map[common.Address]interface{}
	cmu       sync.RWMutex

	logFeed event.Feed
	scope   event.SubscriptionScope
}

// NewChain creates a chain persisting its state in db.
func NewChain(db ethdb.KeyValueStore) *Chain {
	return &Chain{
		db:        db,
		contracts: make(map[common.Address]interface{}),
	}
}

// Database returns the backing database.
func (c *Chain) Database() ethdb.KeyValueStore {
	return c.db
}

// State returns a reader over committed contract storage.
func (c *Chain) State() state.Reader {
	return state.NewReader(c.db)
}

// Deploy registers contract at addr and runs init as its constructor in a
// transaction sent by from. No other transaction runs until the constructor
// has finished, and the registration is undone if init fails.
func (c *Chain) Deploy(from, addr common.Address, contract interface{}, init func(*Frame) error) error {
	c.lock.Lock()
	c.cmu.Lock()
	if _, ok := c.contracts[addr]; ok {
		c.cmu.Unlock()
		c.lock.Unlock()
		return fmt.Errorf("%w: %s", ErrContractExists, addr)
	}
	c.contracts[addr] = contract
	c.cmu.Unlock()

	if init == nil {
		c.lock.Unlock()
		return nil
	}
	if _, err := c.transact(from, addr, nil, init); err != nil {
		c.cmu.Lock()
		delete(c.contracts, addr)
		c.cmu.Unlock()
		return err
	}
	log.Debug("Deployed contract", "address", addr, "type", fmt.Sprintf("%T", contract))
	return nil
}

// Contract returns the contract registered at addr.
func (c *Chain) Contract(addr common.Address) (interface{}, bool) {
	c.cmu.RLock()
	defer c.cmu.RUnlock()

	contract, ok := c.contracts[addr]
	return contract, ok
}

// ContractAt returns the contract at addr if it has type T.
func ContractAt[T any](c *Chain, addr common.Address) (T, bool) {
	var zero T
	contract, ok := c.Contract(addr)
	if !ok {
		return zero, false
	}
	typed, ok := contract.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Transact executes fn as a transaction from an external account to the
// contract at `to`. State changes and logs are committed only if fn returns
// nil; the logs are then published to log subscribers in commit order.
func (c *Chain) Transact(from, to common.Address, value *uint256.Int, fn func(*Frame) error) (*types.Receipt, error) {
	c.lock.Lock()
	if _, ok := c.Contract(to); !ok {
		c.lock.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNoContract, to)
	}
	return c.transact(from, to, value, fn)
}

// transact runs a transaction with c.lock held and releases it. The send lock
// is taken before c.lock is released, so logs reach the feed in the order
// their transactions committed.
func (c *Chain) transact(from, to common.Address, value *uint256.Int, fn func(*Frame) error) (*types.Receipt, error) {
	statedb := state.New(c.db)
	frame := newFrame(c, statedb, from, to, value, 0)

	if err := execute(frame, fn); err != nil {
		c.lock.Unlock()
		txRevertedCounter.Inc(1)
		log.Debug("Transaction reverted", "from", from, "to", to, "err", err)
		return nil, err
	}

	batch := c.db.NewBatch()
	if err := statedb.Commit(batch); err != nil {
		c.lock.Unlock()
		return nil, fmt.Errorf("failed to commit state: %w", err)
	}
	if err := batch.Write(); err != nil {
		c.lock.Unlock()
		return nil, fmt.Errorf("failed to write state: %w", err)
	}
	logs := statedb.Logs()

	c.sendLock.Lock()
	c.lock.Unlock()
	defer c.sendLock.Unlock()

	txCommittedCounter.Inc(1)
	txLogsCounter.Inc(int64(len(logs)))

	if len(logs) > 0 {
		c.logFeed.Send(logs)
	}
	return &types.Receipt{From: from, To: to, Logs: logs}, nil
}

// Call executes fn against the current state and discards every change. It is
// the equivalent of an eth_call.
func (c *Chain) Call(from, to common.Address, fn func(*Frame) error) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	statedb := state.New(c.db)
	return execute(newFrame(c, statedb, from, to, nil, 0), fn)
}

// SubscribeLogs registers a subscription for the logs of committed
// transactions. Batches arrive in commit order. A subscriber must not
// transact on the chain from the goroutine draining ch.
func (c *Chain) SubscribeLogs(ch chan<- []*types.Log) event.Subscription {
	return c.scope.Track(c.logFeed.Subscribe(ch))
}

// Close terminates all log subscriptions.
func (c *Chain) Close() {
	c.scope.Close()
}
