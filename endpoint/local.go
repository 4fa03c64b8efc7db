package endpoint

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
)

// Config configures a local endpoint.
type Config struct {
	ChainID  uint16
	Fees     FeeConfig
	Relayers []common.Address // accounts allowed to deliver inbound packets
}

// storedPayload blocks a path after a failed delivery.
type storedPayload struct {
	Length     uint64
	DstAddress common.Address
	Nonce      uint64
	Hash       common.Hash
}

type queuedPayload struct {
	DstAddress common.Address
	Nonce      uint64
	Payload    []byte
}

// Local is an endpoint contract executing on a host chain. Packets between
// endpoints on the same chain are delivered synchronously; packets for
// destinations without a known endpoint are logged as PacketSent for the
// relay network, which hands them to the destination's ReceivePayload.
type Local struct {
	addr     common.Address
	chainID  uint16
	chain    *host.Chain
	fees     FeeConfig
	relayers mapset.Set[common.Address]
	log      log.Logger
}

// NewLocal creates the endpoint contract. It must be deployed on chain at
// addr before use, see Deploy.
func NewLocal(chain *host.Chain, addr common.Address, cfg Config) *Local {
	return &Local{
		addr:     addr,
		chainID:  cfg.ChainID,
		chain:    chain,
		fees:     cfg.Fees.sanitize(),
		relayers: mapset.NewSet[common.Address](cfg.Relayers...),
		log:      log.New("endpoint", addr, "chain", cfg.ChainID),
	}
}

// Deploy creates a local endpoint and deploys it at addr.
func Deploy(chain *host.Chain, deployer, addr common.Address, cfg Config) (*Local, error) {
	e := NewLocal(chain, addr, cfg)
	if err := chain.Deploy(deployer, addr, e, nil); err != nil {
		return nil, err
	}
	return e, nil
}

// Address implements Endpoint.
func (e *Local) Address() common.Address { return e.addr }

// ChainID returns the chain id the endpoint stamps on outbound packets.
func (e *Local) ChainID() uint16 { return e.chainID }

// AddRelayer allows addr to deliver inbound packets.
func (e *Local) AddRelayer(addr common.Address) {
	e.relayers.Add(addr)
}

func (e *Local) isRelayer(caller common.Address) bool {
	if caller == e.addr || e.relayers.Contains(caller) {
		return true
	}
	_, ok := host.ContractAt[*Local](e.chain, caller)
	return ok
}

// SetDestLzEndpoint routes packets for the destination application ua to
// the endpoint at lzEndpoint on this chain.
func (e *Local) SetDestLzEndpoint(f *host.Frame, ua common.Address, lzEndpoint common.Address) error {
	f.Set(dstEndpointKey(ua), lzEndpoint.Bytes())
	return nil
}

// DestLzEndpoint returns the endpoint registered for ua, if any.
func (e *Local) DestLzEndpoint(r state.Reader, ua common.Address) (common.Address, bool) {
	v := r.GetState(e.addr, dstEndpointKey(ua))
	if len(v) == 0 {
		return common.Address{}, false
	}
	return common.BytesToAddress(v), true
}

// EstimateFees implements Endpoint.
func (e *Local) EstimateFees(r state.Reader, dstChainID uint16, userApplication common.Address, payload []byte, payInZRO bool, adapterParams []byte) (*uint256.Int, *uint256.Int, error) {
	return e.fees.quote(len(payload), payInZRO, adapterParams)
}

// Send implements Endpoint. The calling application is the packet source.
func (e *Local) Send(f *host.Frame, dstChainID uint16, destination []byte, payload []byte, refundAddress common.Address, zroPaymentAddress common.Address, adapterParams []byte) error {
	if len(destination) != types.PathLength {
		return fmt.Errorf("%w: %d", ErrInvalidPath, len(destination))
	}
	effective := adapterParams
	if len(effective) == 0 {
		effective = types.DefaultAdapterParams(DefaultGas)
	}
	params, err := types.DecodeAdapterParams(effective)
	if err != nil {
		return err
	}
	nativeFee, _, err := e.fees.quote(len(payload), zroPaymentAddress != (common.Address{}), effective)
	if err != nil {
		return err
	}
	if f.Value.Lt(nativeFee) {
		return fmt.Errorf("%w: have %s, want %s", ErrInsufficientFee, f.Value, nativeFee)
	}

	ua := f.Caller
	nonce := e.OutboundNonce(f.State(), dstChainID, ua) + 1
	f.Set(outboundNonceKey(dstChainID, ua), encodeUint64(nonce))

	f.Emit(&Sending{
		DstChainID:        dstChainID,
		Destination:       common.CopyBytes(destination),
		Payload:           common.CopyBytes(payload),
		RefundAddress:     refundAddress,
		ZroPaymentAddress: zroPaymentAddress,
		AdapterParams:     common.CopyBytes(adapterParams),
		NativeFee:         nativeFee,
		Value:             new(uint256.Int).Set(f.Value),
	})

	packet := &types.Packet{
		SrcChainID: e.chainID,
		DstChainID: dstChainID,
		SrcAddress: ua,
		DstAddress: common.BytesToAddress(destination[:common.AddressLength]),
		Nonce:      nonce,
		GasLimit:   params.ExtraGas.Uint64(),
		Payload:    common.CopyBytes(payload),
	}

	dstEndpoint, ok := e.DestLzEndpoint(f.State(), packet.DstAddress)
	if !ok {
		f.Emit(&PacketSent{Packet: packet})
		e.log.Debug("Packet sent", "dst", dstChainID, "to", packet.DstAddress, "nonce", nonce)
		return nil
	}
	remote, ok := host.ContractAt[*Local](e.chain, dstEndpoint)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDstEndpoint, dstEndpoint)
	}
	return f.Call(dstEndpoint, nil, func(df *host.Frame) error {
		return remote.ReceivePayload(df, packet.SrcChainID, packet.Path(), packet.DstAddress, packet.Nonce, packet.GasLimit, packet.Payload)
	})
}

// ReceivePayload delivers an inbound packet to dstAddress. Nonces must
// arrive in order per path. While a stored payload blocks the path, packets
// are queued behind it. A failing receiver does not fail the delivery: the
// payload is stored and blocks the path until retried or dropped.
func (e *Local) ReceivePayload(f *host.Frame, srcChainID uint16, srcPath []byte, dstAddress common.Address, nonce uint64, gasLimit uint64, payload []byte) error {
	if !e.isRelayer(f.Caller) {
		return fmt.Errorf("%w: %s", ErrUnknownRelayer, f.Caller)
	}
	expected := e.InboundNonce(f.State(), srcChainID, srcPath) + 1
	if nonce != expected {
		return fmt.Errorf("%w: have %d, want %d", ErrWrongNonce, nonce, expected)
	}
	f.Set(inboundNonceKey(srcChainID, srcPath), encodeUint64(nonce))

	if e.storedPayload(f.State(), srcChainID, srcPath) != nil {
		queue := e.queue(f.State(), srcChainID, srcPath)
		queue = append(queue, queuedPayload{DstAddress: dstAddress, Nonce: nonce, Payload: common.CopyBytes(payload)})
		e.setQueue(f, srcChainID, srcPath, queue)
		e.log.Debug("Queued payload behind stored payload", "src", srcChainID, "nonce", nonce, "queued", len(queue))
		return nil
	}
	if len(f.Get(blockNextKey)) > 0 {
		f.Set(blockNextKey, nil)
		e.storePayload(f, srcChainID, srcPath, dstAddress, nonce, payload, nil)
		return nil
	}
	e.deliver(f, srcChainID, srcPath, dstAddress, nonce, payload)
	return nil
}

// BlockNextMsg makes the next inbound payload get stored instead of
// delivered.
func (e *Local) BlockNextMsg(f *host.Frame) error {
	f.Set(blockNextKey, []byte{1})
	return nil
}

func (e *Local) deliver(f *host.Frame, srcChainID uint16, srcPath []byte, dstAddress common.Address, nonce uint64, payload []byte) bool {
	res := f.TryCall(dstAddress, nil, func(rf *host.Frame) error {
		return e.lzReceive(rf, srcChainID, srcPath, nonce, payload)
	})
	if res.Failed() {
		e.storePayload(f, srcChainID, srcPath, dstAddress, nonce, payload, res.Revert())
		return false
	}
	return true
}

func (e *Local) lzReceive(rf *host.Frame, srcChainID uint16, srcPath []byte, nonce uint64, payload []byte) error {
	recv, ok := host.ContractAt[Receiver](e.chain, rf.Self)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoReceiver, rf.Self)
	}
	return recv.LzReceive(rf, srcChainID, srcPath, nonce, payload)
}

func (e *Local) storePayload(f *host.Frame, srcChainID uint16, srcPath []byte, dstAddress common.Address, nonce uint64, payload []byte, reason []byte) {
	sp := &storedPayload{
		Length:     uint64(len(payload)),
		DstAddress: dstAddress,
		Nonce:      nonce,
		Hash:       types.PayloadHash(payload),
	}
	enc, err := rlp.EncodeToBytes(sp)
	if err != nil {
		panic(err)
	}
	f.Set(storedPayloadKey(srcChainID, srcPath), enc)
	f.Emit(&PayloadStored{
		SrcChainID: srcChainID,
		SrcPath:    common.CopyBytes(srcPath),
		DstAddress: dstAddress,
		Nonce:      nonce,
		Payload:    common.CopyBytes(payload),
		Reason:     reason,
	})
	e.log.Debug("Payload stored", "src", srcChainID, "dst", dstAddress, "nonce", nonce)
}

// RetryPayload re-delivers the stored payload of a path. Anyone may retry;
// the payload must match the stored one. Unlike the first delivery, a
// failing receiver fails the retry. Queued packets are delivered afterwards.
func (e *Local) RetryPayload(f *host.Frame, srcChainID uint16, srcPath []byte, payload []byte) error {
	sp := e.storedPayload(f.State(), srcChainID, srcPath)
	if sp == nil {
		return ErrNoStoredPayload
	}
	if uint64(len(payload)) != sp.Length || types.PayloadHash(payload) != sp.Hash {
		return ErrInvalidPayload
	}
	f.Set(storedPayloadKey(srcChainID, srcPath), nil)

	err := f.Call(sp.DstAddress, nil, func(rf *host.Frame) error {
		return e.lzReceive(rf, srcChainID, srcPath, sp.Nonce, payload)
	})
	if err != nil {
		return err
	}
	f.Emit(&PayloadCleared{SrcChainID: srcChainID, SrcPath: common.CopyBytes(srcPath), Nonce: sp.Nonce, DstAddress: sp.DstAddress})
	e.flushQueue(f, srcChainID, srcPath)
	return nil
}

// ForceResumeReceive implements Endpoint.
func (e *Local) ForceResumeReceive(f *host.Frame, srcChainID uint16, srcPath []byte) error {
	sp := e.storedPayload(f.State(), srcChainID, srcPath)
	if sp == nil {
		return ErrNoStoredPayload
	}
	if sp.DstAddress != f.Caller {
		return fmt.Errorf("%w: %s", ErrInvalidCaller, f.Caller)
	}
	f.Set(storedPayloadKey(srcChainID, srcPath), nil)
	f.Emit(&UaForceResumeReceive{SrcChainID: srcChainID, SrcPath: common.CopyBytes(srcPath)})
	e.log.Info("Stored payload dropped", "src", srcChainID, "ua", f.Caller, "nonce", sp.Nonce)

	e.flushQueue(f, srcChainID, srcPath)
	return nil
}

// flushQueue delivers queued packets in order until one fails, which then
// blocks the path again.
func (e *Local) flushQueue(f *host.Frame, srcChainID uint16, srcPath []byte) {
	queue := e.queue(f.State(), srcChainID, srcPath)
	for i, q := range queue {
		if !e.deliver(f, srcChainID, srcPath, q.DstAddress, q.Nonce, q.Payload) {
			e.setQueue(f, srcChainID, srcPath, queue[i+1:])
			return
		}
	}
	e.setQueue(f, srcChainID, srcPath, nil)
}

// SetConfig implements Endpoint. The config is scoped to the calling
// application.
func (e *Local) SetConfig(f *host.Frame, version uint16, chainID uint16, configType uint64, config []byte) error {
	f.Set(configKey(f.Caller, version, chainID, configType), config)
	return nil
}

// GetConfig implements Endpoint.
func (e *Local) GetConfig(r state.Reader, version uint16, chainID uint16, userApplication common.Address, configType uint64) ([]byte, error) {
	return r.GetState(e.addr, configKey(userApplication, version, chainID, configType)), nil
}

// SetSendVersion implements Endpoint.
func (e *Local) SetSendVersion(f *host.Frame, version uint16) error {
	f.Set(versionKey(sendVersionPrefix, f.Caller), encodeUint16(version))
	return nil
}

// SetReceiveVersion implements Endpoint.
func (e *Local) SetReceiveVersion(f *host.Frame, version uint16) error {
	f.Set(versionKey(recvVersionPrefix, f.Caller), encodeUint16(version))
	return nil
}

func (e *Local) SendVersion(r state.Reader, ua common.Address) uint16 {
	return decodeUint16(r.GetState(e.addr, versionKey(sendVersionPrefix, ua)))
}

func (e *Local) ReceiveVersion(r state.Reader, ua common.Address) uint16 {
	return decodeUint16(r.GetState(e.addr, versionKey(recvVersionPrefix, ua)))
}

// InboundNonce returns the last nonce received on a path.
func (e *Local) InboundNonce(r state.Reader, srcChainID uint16, srcPath []byte) uint64 {
	return decodeUint64(r.GetState(e.addr, inboundNonceKey(srcChainID, srcPath)))
}

// OutboundNonce returns the last nonce sent by ua to a chain.
func (e *Local) OutboundNonce(r state.Reader, dstChainID uint16, ua common.Address) uint64 {
	return decodeUint64(r.GetState(e.addr, outboundNonceKey(dstChainID, ua)))
}

// HasStoredPayload reports whether a stored payload blocks the path.
func (e *Local) HasStoredPayload(r state.Reader, srcChainID uint16, srcPath []byte) bool {
	return e.storedPayload(r, srcChainID, srcPath) != nil
}

// QueueLength returns the number of packets waiting behind a stored payload.
func (e *Local) QueueLength(r state.Reader, srcChainID uint16, srcPath []byte) int {
	return len(e.queue(r, srcChainID, srcPath))
}

func (e *Local) storedPayload(r state.Reader, srcChainID uint16, srcPath []byte) *storedPayload {
	enc := r.GetState(e.addr, storedPayloadKey(srcChainID, srcPath))
	if len(enc) == 0 {
		return nil
	}
	sp := new(storedPayload)
	if err := rlp.DecodeBytes(enc, sp); err != nil {
		e.log.Error("Corrupt stored payload", "src", srcChainID, "err", err)
		return nil
	}
	return sp
}

func (e *Local) queue(r state.Reader, srcChainID uint16, srcPath []byte) []queuedPayload {
	enc := r.GetState(e.addr, queueKey(srcChainID, srcPath))
	if len(enc) == 0 {
		return nil
	}
	var queue []queuedPayload
	if err := rlp.DecodeBytes(enc, &queue); err != nil {
		e.log.Error("Corrupt payload queue", "src", srcChainID, "err", err)
		return nil
	}
	return queue
}

func (e *Local) setQueue(f *host.Frame, srcChainID uint16, srcPath []byte, queue []queuedPayload) {
	if len(queue) == 0 {
		f.Set(queueKey(srcChainID, srcPath), nil)
		return
	}
	enc, err := rlp.EncodeToBytes(queue)
	if err != nil {
		panic(err)
	}
	f.Set(queueKey(srcChainID, srcPath), enc)
}
