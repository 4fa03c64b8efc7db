package lzapp

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/types"
)

// BlockingApp applies admitted messages inline. A failing application fails
// the whole receive call, leaving redelivery to the endpoint.
type BlockingApp struct {
	*LzApp
}

// NewBlocking creates a blocking application. It must be deployed before
// use, see DeployBlocking.
func NewBlocking(chain *host.Chain, addr common.Address, cfg Config) *BlockingApp {
	b := new(BlockingApp)
	b.LzApp = newLzApp(chain, addr, cfg, b)
	return b
}

// DeployBlocking creates a blocking application and deploys it at addr.
func DeployBlocking(chain *host.Chain, addr common.Address, cfg Config) (*BlockingApp, error) {
	b := NewBlocking(chain, addr, cfg)
	if err := b.deploy(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *BlockingApp) deliver(f *host.Frame, msg *types.Message) error {
	return b.apply(f, msg)
}
