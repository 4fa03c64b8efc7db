// Package lzscan audits the inbound messages of an application against its
// endpoint: every nonce the endpoint accepted must have been delivered or be
// waiting for a retry.
package lzscan

import (
	"context"
	"errors"
	"sort"

	"github.com/JekaMas/workerpool"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/lzapp"
)

const (
	maxConcurrencyLimit = 5
	defaultPageSize     = 64
)

var errEmptyPath = errors.New("empty source path")

// interface for testability
//
//go:generate mockgen -source=scan.go -destination=mocks/scan.go -package=mocks
type NonceProvider interface {
	InboundNonce(r state.Reader, srcChainID uint16, srcPath []byte) uint64
}

type DeliveryReader interface {
	Received(r state.Reader, srcChainID uint16, srcPath []byte, nonce uint64) (*types.Delivery, bool)
	FailedMessage(r state.Reader, srcChainID uint16, srcPath []byte, nonce uint64) common.Hash
}

// Blocking adapts a blocking application, which keeps no failed messages of
// its own, to a DeliveryReader.
type Blocking struct {
	*lzapp.BlockingApp
}

func (Blocking) FailedMessage(state.Reader, uint16, []byte, uint64) common.Hash {
	return common.Hash{}
}

// Result lists the nonces of one path by outcome, in ascending order.
type Result struct {
	From, To uint64
	Failed   []uint64 // pending retry
	Missing  []uint64 // accepted by the endpoint, never delivered
}

// Config bounds the scan.
type Config struct {
	PageSize uint64 `toml:",omitempty"`
	Workers  int    `toml:",omitempty"`
}

// Scanner checks delivery consistency of one application.
type Scanner struct {
	nonces NonceProvider
	app    DeliveryReader
	cfg    Config
}

// NewScanner creates a scanner comparing the endpoint nonces of nonces with
// the records of app.
func NewScanner(nonces NonceProvider, app DeliveryReader, cfg Config) *Scanner {
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Workers <= 0 || cfg.Workers > maxConcurrencyLimit {
		cfg.Workers = maxConcurrencyLimit
	}
	return &Scanner{nonces: nonces, app: app, cfg: cfg}
}

// Scan runs over the nonce interval [from, inbound nonce] of the path,
// checking every nonce against the delivery and failed-message records.
func (s *Scanner) Scan(ctx context.Context, r state.Reader, srcChainID uint16, srcPath []byte, from uint64) (*Result, error) {
	if len(srcPath) == 0 {
		return nil, errEmptyPath
	}
	if from == 0 {
		from = 1
	}
	last := s.nonces.InboundNonce(r, srcChainID, srcPath)
	res := &Result{From: from, To: last}
	if last < from {
		return res, nil
	}

	var (
		failed  = mapset.NewSet[uint64]()
		missing = mapset.NewSet[uint64]()
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wp := workerpool.New(s.cfg.Workers)
	for start := from; start <= last; start += s.cfg.PageSize {
		end := start + s.cfg.PageSize - 1
		if end > last || end < start {
			end = last
		}
		start := start
		wp.Submit(ctx, func() error {
			for nonce := start; nonce <= end; nonce++ {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				if _, ok := s.app.Received(r, srcChainID, srcPath, nonce); ok {
					continue
				}
				if s.app.FailedMessage(r, srcChainID, srcPath, nonce) != (common.Hash{}) {
					failed.Add(nonce)
					continue
				}
				missing.Add(nonce)
			}
			return nil
		}, 0)
		if end == last {
			break
		}
	}
	wp.StopWait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Failed = sorted(failed)
	res.Missing = sorted(missing)

	if len(res.Missing) > 0 {
		log.Warn("Found undelivered messages", "src", srcChainID, "path", common.Bytes2Hex(srcPath), "missing", len(res.Missing), "from", from, "to", last)
	}
	return res, nil
}

func sorted(set mapset.Set[uint64]) []uint64 {
	out := set.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
