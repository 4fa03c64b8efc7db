// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package state implements the journaled contract storage that every
// transaction executes against.
package state

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/maticnetwork/lzapp/core/types"
)

// Reader reads contract storage.
type Reader interface {
	GetState(addr common.Address, key []byte) []byte
}

// storageKey namespaces a contract storage key by the contract address.
func storageKey(addr common.Address, key []byte) []byte {
	out := make([]byte, 0, common.AddressLength+len(key))
	out = append(out, addr.Bytes()...)
	return append(out, key...)
}

// StateDB buffers the writes of one transaction above the committed database.
// Nothing reaches the database until Commit.
type StateDB struct {
	db ethdb.KeyValueReader

	dirty map[string][]byte // nil value marks a deletion
	logs  []*types.Log

	journal        *journal
	validRevisions []revision
	nextRevisionID int
}

type revision struct {
	id           int
	journalIndex int
}

// New creates a state overlay above the given database.
func New(db ethdb.KeyValueReader) *StateDB {
	return &StateDB{
		db:      db,
		dirty:   make(map[string][]byte),
		journal: newJournal(),
	}
}

// GetState returns the value stored under key for the contract, or nil.
func (s *StateDB) GetState(addr common.Address, key []byte) []byte {
	k := storageKey(addr, key)
	if v, ok := s.dirty[string(k)]; ok {
		return common.CopyBytes(v)
	}
	return readCommitted(s.db, k)
}

// SetState stores value under key. An empty value deletes the key.
func (s *StateDB) SetState(addr common.Address, key []byte, value []byte) {
	k := string(storageKey(addr, key))
	prev, dirty := s.dirty[k]
	s.journal.append(storageChange{key: k, prev: prev, wasDirty: dirty})
	if len(value) == 0 {
		s.dirty[k] = nil
		return
	}
	s.dirty[k] = common.CopyBytes(value)
}

// AddLog records a log. It is discarded if the enclosing snapshot reverts.
func (s *StateDB) AddLog(l *types.Log) {
	s.journal.append(addLogChange{})
	s.logs = append(s.logs, l)
}

// Logs returns the logs collected so far.
func (s *StateDB) Logs() []*types.Log {
	return s.logs
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionID
	s.nextRevisionID++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// DirtyCount returns the number of keys touched by the transaction.
func (s *StateDB) DirtyCount() int {
	return len(s.dirty)
}

// Commit writes all buffered changes into the batch. The caller writes the
// batch; the StateDB must not be used afterwards.
func (s *StateDB) Commit(batch ethdb.KeyValueWriter) error {
	keys := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := s.dirty[k]
		if v == nil {
			if err := batch.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := batch.Put([]byte(k), v); err != nil {
			return err
		}
	}
	for i, l := range s.logs {
		l.Index = uint(i)
	}
	return nil
}

// committedReader reads directly from the database.
type committedReader struct {
	db ethdb.KeyValueReader
}

// NewReader returns a Reader over committed storage.
func NewReader(db ethdb.KeyValueReader) Reader {
	return &committedReader{db: db}
}

func (r *committedReader) GetState(addr common.Address, key []byte) []byte {
	return readCommitted(r.db, storageKey(addr, key))
}

func readCommitted(db ethdb.KeyValueReader, key []byte) []byte {
	v, err := db.Get(key)
	if err != nil || len(v) == 0 {
		return nil
	}
	return common.CopyBytes(v)
}

// IteratePrefix calls fn for every committed key of the contract starting
// with prefix. The key passed to fn has the prefix stripped. Iteration stops
// when fn returns false.
func IteratePrefix(db ethdb.Iteratee, addr common.Address, prefix []byte, fn func(key, value []byte) bool) error {
	full := storageKey(addr, prefix)
	it := db.NewIterator(full, nil)
	defer it.Release()

	for it.Next() {
		if !fn(common.CopyBytes(it.Key()[len(full):]), common.CopyBytes(it.Value())) {
			break
		}
	}
	return it.Error()
}
