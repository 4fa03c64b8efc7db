package endpoint

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/maticnetwork/lzapp/core/types"
)

// DefaultGas is the gas forwarded to the receiver when a sender supplies no
// adapter params.
const DefaultGas = 200000

var priceRatioDenominator = uint256.NewInt(1e10)

// FeeConfig parameterizes the fee quote of the local endpoint.
type FeeConfig struct {
	DstPriceRatio   *uint256.Int `toml:",omitempty"` // destination/source native price, scaled by 1e10
	DstGasPrice     *uint256.Int `toml:",omitempty"` // destination gas price in wei
	BaseGas         uint64
	GasPerByte      uint64
	DstNativeAmtCap *uint256.Int `toml:",omitempty"` // largest airdrop a sender may request
	OracleFee       *uint256.Int `toml:",omitempty"`
	ProtocolFeeBP   uint64       // native protocol fee in basis points of relayer+oracle fees
	ZroFee          *uint256.Int `toml:",omitempty"` // flat protocol fee when paying in ZRO
}

// DefaultFeeConfig returns the fee parameters of the reference endpoint.
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		DstPriceRatio:   uint256.NewInt(1e10),
		DstGasPrice:     uint256.NewInt(1e10),
		BaseGas:         100,
		GasPerByte:      1,
		DstNativeAmtCap: new(uint256.Int).Mul(uint256.NewInt(10), uint256.NewInt(1e18)),
		OracleFee:       uint256.NewInt(1e16),
		ProtocolFeeBP:   1000,
		ZroFee:          uint256.NewInt(1e18),
	}
}

// sanitize fills unset price fields from the defaults.
func (c FeeConfig) sanitize() FeeConfig {
	def := DefaultFeeConfig()
	if c.DstPriceRatio == nil {
		c.DstPriceRatio = def.DstPriceRatio
	}
	if c.DstGasPrice == nil {
		c.DstGasPrice = def.DstGasPrice
	}
	if c.DstNativeAmtCap == nil {
		c.DstNativeAmtCap = def.DstNativeAmtCap
	}
	if c.OracleFee == nil {
		c.OracleFee = def.OracleFee
	}
	if c.ZroFee == nil {
		c.ZroFee = def.ZroFee
	}
	return c
}

// relayerFee is the price of executing the message on the destination chain,
// converted to source native tokens.
func (c *FeeConfig) relayerFee(payloadSize int, params *types.AdapterParams) (*uint256.Int, error) {
	remote := new(uint256.Int)
	if params.TxType == types.TxTypeAirdrop {
		if params.AirdropAmount.Gt(c.DstNativeAmtCap) {
			return nil, fmt.Errorf("%w: %s > %s", ErrAirdropCap, params.AirdropAmount, c.DstNativeAmtCap)
		}
		remote.Add(remote, params.AirdropAmount)
	}
	gas := new(uint256.Int).Add(uint256.NewInt(c.BaseGas), params.ExtraGas)
	remote.Add(remote, gas.Mul(gas, c.DstGasPrice))

	base := new(uint256.Int).Mul(remote, c.DstPriceRatio)
	base.Div(base, priceRatioDenominator)

	perByte := new(uint256.Int).Mul(c.DstGasPrice, uint256.NewInt(c.GasPerByte))
	perByte.Mul(perByte, c.DstPriceRatio)
	perByte.Div(perByte, priceRatioDenominator)

	return base.Add(base, perByte.Mul(perByte, uint256.NewInt(uint64(payloadSize)))), nil
}

// quote returns the native and ZRO fees for a payload.
func (c *FeeConfig) quote(payloadSize int, payInZRO bool, adapterParams []byte) (*uint256.Int, *uint256.Int, error) {
	if len(adapterParams) == 0 {
		adapterParams = types.DefaultAdapterParams(DefaultGas)
	}
	params, err := types.DecodeAdapterParams(adapterParams)
	if err != nil {
		return nil, nil, err
	}
	relayer, err := c.relayerFee(payloadSize, params)
	if err != nil {
		return nil, nil, err
	}
	native := new(uint256.Int).Add(relayer, c.OracleFee)
	zro := new(uint256.Int)

	if payInZRO {
		zro.Set(c.ZroFee)
		return native, zro, nil
	}
	protocol := new(uint256.Int).Mul(native, uint256.NewInt(c.ProtocolFeeBP))
	protocol.Div(protocol, uint256.NewInt(10000))
	return native.Add(native, protocol), zro, nil
}
