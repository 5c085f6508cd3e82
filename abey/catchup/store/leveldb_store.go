// Copyright 2015 The go-ethereum Authors
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

package store

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/abeychain/go-abey/abey/catchup/types"
	"github.com/abeychain/go-abey/log"
)

var (
	bodyPrefix   = []byte("b")
	hashPrefix   = []byte("h")
	ownerPrefix  = []byte("o")
	byHashPrefix = []byte("r")
)

// BodyCodec turns a Body into storable bytes and back. Wire framing is a
// collaborator concern per spec.md §1/§9; this is the *storage* encoding,
// a separate concern the masternode-side adapter owns.
type BodyCodec interface {
	Encode(types.Body) ([]byte, error)
	Decode([]byte) (types.Body, error)
}

// indexRecord is the JSON-on-disk shape of an IndexEntry's owner list,
// kept separate from the body so LastNIndex never touches body bytes.
type indexRecord struct {
	Hash   types.Hash
	Owners []types.PeerID
}

// LevelDBStore is the durable masternode-side Block Store Adapter,
// matching the teacher's own storage engine of choice (syndtr/goleveldb,
// see les/backend.go, core/*). A hashicorp/golang-lru cache memoizes
// LastNIndex slices so repeated BlockIndexRequests from the same hash
// don't re-walk the database.
type LevelDBStore struct {
	db    *leveldb.DB
	codec BodyCodec

	mu     sync.RWMutex
	height types.Height
	hash   types.Hash

	idxCache *lru.Cache
}

// OpenLevelDBStore opens (or creates) a goleveldb database at path, seeded
// at genesisHash if empty.
func OpenLevelDBStore(path string, codec BodyCodec, genesisHash types.Hash) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	cache, _ := lru.New(256)
	s := &LevelDBStore{db: db, codec: codec, hash: genesisHash, idxCache: cache}

	if v, err := db.Get(heightKey(), nil); err == nil {
		s.height = types.Height(binary.BigEndian.Uint64(v))
		if hv, err := db.Get(hashKeyFor(s.height), nil); err == nil {
			copy(s.hash[:], hv)
		}
	} else {
		s.putHash(0, genesisHash)
		s.putHeight(0)
	}
	return s, nil
}

func (s *LevelDBStore) Close() error { return s.db.Close() }

func heightKey() []byte { return append(append([]byte{}, hashPrefix...), []byte("latest")...) }

func hashKeyFor(h types.Height) []byte {
	k := make([]byte, len(hashPrefix)+8)
	copy(k, hashPrefix)
	binary.BigEndian.PutUint64(k[len(hashPrefix):], uint64(h))
	return k
}

func bodyKeyFor(h types.Height) []byte {
	k := make([]byte, len(bodyPrefix)+8)
	copy(k, bodyPrefix)
	binary.BigEndian.PutUint64(k[len(bodyPrefix):], uint64(h))
	return k
}

func ownerKeyFor(h types.Height) []byte {
	k := make([]byte, len(ownerPrefix)+8)
	copy(k, ownerPrefix)
	binary.BigEndian.PutUint64(k[len(ownerPrefix):], uint64(h))
	return k
}

func byHashKeyFor(h types.Hash) []byte { return append(append([]byte{}, byHashPrefix...), h[:]...) }

func (s *LevelDBStore) putHeight(h types.Height) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(h))
	_ = s.db.Put(heightKey(), buf, nil)
}

func (s *LevelDBStore) putHash(h types.Height, hash types.Hash) {
	_ = s.db.Put(hashKeyFor(h), hash[:], nil)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(h))
	_ = s.db.Put(byHashKeyFor(hash), buf, nil)
}

// SetOwners records the owners claimed for height — see MemStore.SetOwners.
func (s *LevelDBStore) SetOwners(height types.Height, owners []types.PeerID) error {
	buf, err := json.Marshal(indexRecord{Owners: owners})
	if err != nil {
		return err
	}
	s.idxCache.Purge()
	return s.db.Put(ownerKeyFor(height), buf, nil)
}

func (s *LevelDBStore) Latest() (types.Height, types.Hash) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height, s.hash
}

func (s *LevelDBStore) HeightOf(hash types.Hash) (types.Height, error) {
	v, err := s.db.Get(byHashKeyFor(hash), nil)
	if err != nil {
		return 0, ErrNotFound
	}
	return types.Height(binary.BigEndian.Uint64(v)), nil
}

func (s *LevelDBStore) LastNIndex(n uint64) []types.IndexEntry {
	s.mu.RLock()
	height := s.height
	s.mu.RUnlock()
	if n == 0 {
		return nil
	}

	cacheKey := [2]uint64{uint64(height), n}
	if v, ok := s.idxCache.Get(cacheKey); ok {
		return v.([]types.IndexEntry)
	}

	start := uint64(height) - n + 1
	out := make([]types.IndexEntry, 0, n)
	for h := start; h <= uint64(height); h++ {
		hv, err := s.db.Get(hashKeyFor(types.Height(h)), nil)
		if err != nil {
			log.Warn("catchup store: missing hash for height in range", "height", h)
			continue
		}
		var hash types.Hash
		copy(hash[:], hv)

		var owners []types.PeerID
		if ov, err := s.db.Get(ownerKeyFor(types.Height(h)), nil); err == nil {
			var rec indexRecord
			if err := json.Unmarshal(ov, &rec); err == nil {
				owners = rec.Owners
			}
		}
		out = append(out, types.IndexEntry{Height: types.Height(h), Hash: hash, Owners: owners})
	}
	s.idxCache.Add(cacheKey, out)
	return out
}

func (s *LevelDBStore) Apply(body types.Body) error {
	buf, err := s.codec.Encode(body)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(bodyKeyFor(body.Height()), buf)
	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	s.putHash(body.Height(), body.Hash())
	s.putHeight(body.Height())

	s.mu.Lock()
	s.height, s.hash = body.Height(), body.Hash()
	s.mu.Unlock()
	s.idxCache.Purge()
	return nil
}

// BodyAt returns the decoded body stored at height, if any.
func (s *LevelDBStore) BodyAt(height types.Height) (types.Body, error) {
	v, err := s.db.Get(bodyKeyFor(height), nil)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.codec.Decode(v)
}
