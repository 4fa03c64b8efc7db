package lzapp

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/endpoint"
)

const testChainID uint16 = 123

var (
	owner   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	user    = common.HexToAddress("0x0000000000000000000000000000000000000002")
	relayer = common.HexToAddress("0x0000000000000000000000000000000000000003")
	epAddr  = common.HexToAddress("0x00000000000000000000000000000000000000e0")
	addrA   = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	addrB   = common.HexToAddress("0x00000000000000000000000000000000000000b0")

	payload = []byte{0x69, 0x69, 0x69}
	pathAB  = types.PackPath(addrA, addrB)
	pathBA  = types.PackPath(addrB, addrA)
)

// harness is one chain with a single endpoint delivering to itself, the way
// both applications of a pair see each other as remote peers on chain 123.
type harness struct {
	t     *testing.T
	chain *host.Chain
	ep    *endpoint.Local
	inbox Inbox
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	chain := host.NewChain(memorydb.New())
	t.Cleanup(chain.Close)

	ep, err := endpoint.Deploy(chain, owner, epAddr, endpoint.Config{
		ChainID:  testChainID,
		Relayers: []common.Address{relayer},
	})
	require.NoError(t, err)

	return &harness{t: t, chain: chain, ep: ep}
}

func (h *harness) state() state.Reader {
	return h.chain.State()
}

func (h *harness) tx(from, to common.Address, fn func(*host.Frame) error) (*types.Receipt, error) {
	return h.chain.Transact(from, to, nil, fn)
}

func (h *harness) mustTx(from, to common.Address, fn func(*host.Frame) error) *types.Receipt {
	h.t.Helper()
	receipt, err := h.tx(from, to, fn)
	require.NoError(h.t, err)
	return receipt
}

// connect makes a and b trusted peers and routes their packets through the
// harness endpoint.
func (h *harness) connect(a, b *LzApp) {
	h.t.Helper()

	h.mustTx(owner, epAddr, func(f *host.Frame) error {
		if err := h.ep.SetDestLzEndpoint(f, a.Address(), epAddr); err != nil {
			return err
		}
		return h.ep.SetDestLzEndpoint(f, b.Address(), epAddr)
	})
	h.mustTx(owner, a.Address(), func(f *host.Frame) error {
		return a.SetTrustedRemote(f, testChainID, types.PackPath(b.Address(), a.Address()))
	})
	h.mustTx(owner, b.Address(), func(f *host.Frame) error {
		return b.SetTrustedRemote(f, testChainID, types.PackPath(a.Address(), b.Address()))
	})
}

func (h *harness) config() Config {
	return Config{Owner: owner, Endpoint: h.ep, Application: h.inbox}
}

func newBlockingPair(t *testing.T) (*harness, *BlockingApp, *BlockingApp) {
	h := newHarness(t)

	a, err := DeployBlocking(h.chain, addrA, h.config())
	require.NoError(t, err)
	b, err := DeployBlocking(h.chain, addrB, h.config())
	require.NoError(t, err)

	h.connect(a.LzApp, b.LzApp)
	return h, a, b
}

func newNonblockingPair(t *testing.T) (*harness, *NonblockingApp, *NonblockingApp) {
	h := newHarness(t)

	a, err := DeployNonblocking(h.chain, addrA, h.config())
	require.NoError(t, err)
	b, err := DeployNonblocking(h.chain, addrB, h.config())
	require.NoError(t, err)

	h.connect(a.LzApp, b.LzApp)
	return h, a, b
}

func (h *harness) fees(app *LzApp, p []byte) *uint256.Int {
	h.t.Helper()
	native, zro, err := app.EstimateFees(h.state(), false, testChainID, p, nil)
	require.NoError(h.t, err)
	require.True(h.t, zro.IsZero())
	return native
}

// send makes the owner send p from app to its trusted remote, paying the
// quoted fee.
func (h *harness) send(app *LzApp, p []byte) (*types.Receipt, error) {
	fee := h.fees(app, p)
	return h.chain.Transact(owner, app.Address(), fee, func(f *host.Frame) error {
		return app.Send(f, testChainID, p, nil)
	})
}

func (h *harness) setRevertOnReceive(app common.Address, revert bool) {
	h.t.Helper()
	h.mustTx(user, app, func(f *host.Frame) error {
		return h.inbox.SetRevertOnReceive(f, revert)
	})
}

// receive calls the receive entry point of app as the endpoint would.
func (h *harness) receive(app *LzApp, path []byte, nonce uint64, p []byte) (*types.Receipt, error) {
	return h.chain.Transact(epAddr, app.Address(), nil, func(f *host.Frame) error {
		return app.LzReceive(f, testChainID, path, nonce, p)
	})
}
