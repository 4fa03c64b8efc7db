package export

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/maticnetwork/lzapp/core/host"
	"github.com/maticnetwork/lzapp/core/types"
	"github.com/maticnetwork/lzapp/lzapp"
)

// ErrPayloadMismatch is returned when importing an entry whose payload does
// not hash to its recorded payload hash.
var ErrPayloadMismatch = errors.New("payload does not match hash")

// Dump snapshots the failed-message queue served by reader.
func Dump(reader *lzapp.Reader, app common.Address, chainID uint16) (*QueueDump, error) {
	failed, err := reader.FailedMessages()
	if err != nil {
		return nil, err
	}
	dump := &QueueDump{App: app, ChainID: chainID, Entries: make([]*Entry, 0, len(failed))}
	for _, fm := range failed {
		dump.Entries = append(dump.Entries, &Entry{
			SrcChainID:  fm.SrcChainID,
			SrcPath:     fm.SrcPath,
			Nonce:       fm.Nonce,
			PayloadHash: fm.PayloadHash,
			Payload:     reader.Preimage(fm.PayloadHash),
		})
	}
	return dump, nil
}

// Import replays the entries of dump into app in a single transaction sent
// by owner. Entries already pending with the same hash are skipped. It
// returns the number of entries written.
func Import(chain *host.Chain, app *lzapp.NonblockingApp, owner common.Address, dump *QueueDump) (int, error) {
	for _, e := range dump.Entries {
		if len(e.Payload) > 0 && types.PayloadHash(e.Payload) != e.PayloadHash {
			return 0, fmt.Errorf("%w: chain %d nonce %d", ErrPayloadMismatch, e.SrcChainID, e.Nonce)
		}
	}

	var imported int
	_, err := chain.Transact(owner, app.Address(), nil, func(f *host.Frame) error {
		imported = 0
		for _, e := range dump.Entries {
			if app.FailedMessage(f.State(), e.SrcChainID, e.SrcPath, e.Nonce) == e.PayloadHash {
				continue
			}
			var err error
			if e.HasPayload() {
				err = app.StoreFailedPayload(f, e.SrcChainID, e.SrcPath, e.Nonce, e.Payload)
			} else {
				err = app.StoreFailedMessage(f, e.SrcChainID, e.SrcPath, e.Nonce, e.PayloadHash)
			}
			if err != nil {
				return fmt.Errorf("entry chain %d nonce %d: %w", e.SrcChainID, e.Nonce, err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info("Imported failed messages", "app", app.Address(), "imported", imported, "total", len(dump.Entries))

	return imported, nil
}
