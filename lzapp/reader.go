package lzapp

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/metrics"
	lru "github.com/hashicorp/golang-lru"

	"github.com/maticnetwork/lzapp/core/state"
	"github.com/maticnetwork/lzapp/core/types"
)

var (
	preimageCacheHit  = metrics.NewRegisteredGauge("lzapp/preimage/cache/hit", nil)
	preimageCacheMiss = metrics.NewRegisteredGauge("lzapp/preimage/cache/miss", nil)
)

const defaultPreimageCacheSize = 1024

// Reader serves the failed-message queue of a nonblocking application from
// committed state.
type Reader struct {
	app       *NonblockingApp
	db        ethdb.KeyValueStore
	preimages *lru.Cache // payload hash -> payload
}

// NewReader creates a reader for app. cacheSize bounds the preimage cache;
// zero selects the default.
func NewReader(app *NonblockingApp, cacheSize int) (*Reader, error) {
	if cacheSize <= 0 {
		cacheSize = defaultPreimageCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Reader{app: app, db: app.chain.Database(), preimages: cache}, nil
}

// State returns the committed state the reader serves.
func (r *Reader) State() state.Reader {
	return state.NewReader(r.db)
}

// FailedMessages lists every pending failure record in key order.
func (r *Reader) FailedMessages() ([]*types.FailedMessage, error) {
	var out []*types.FailedMessage
	err := state.IteratePrefix(r.db, r.app.addr, failedMessagePrefix, func(key, value []byte) bool {
		chainID, path, nonce, ok := parseMessageKey(key)
		if !ok {
			r.app.log.Warn("Skipping malformed failed message key", "key", common.Bytes2Hex(key))
			return true
		}
		out = append(out, &types.FailedMessage{
			SrcChainID:  chainID,
			SrcPath:     path,
			Nonce:       nonce,
			PayloadHash: common.BytesToHash(value),
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Preimage returns the payload with the given hash if the contract stored
// it. Preimages never change, so hits are served from the cache.
func (r *Reader) Preimage(hash common.Hash) []byte {
	if payload, ok := r.preimages.Get(hash); ok {
		preimageCacheHit.Update(1)
		return payload.([]byte)
	}
	preimageCacheMiss.Update(1)

	payload := r.app.Preimage(r.State(), hash)
	if payload == nil {
		return nil
	}
	r.preimages.Add(hash, payload)

	return payload
}

// PendingMessages returns the failed messages whose payload is known,
// ready to be retried.
func (r *Reader) PendingMessages() ([]*types.Message, error) {
	failed, err := r.FailedMessages()
	if err != nil {
		return nil, err
	}
	out := make([]*types.Message, 0, len(failed))
	for _, fm := range failed {
		payload := r.Preimage(fm.PayloadHash)
		if payload == nil {
			if fm.PayloadHash != types.PayloadHash(nil) {
				continue
			}
			payload = []byte{}
		}
		out = append(out, types.NewMessage(fm.SrcChainID, fm.SrcPath, fm.Nonce, payload))
	}
	return out, nil
}
