package store

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/cmwaters/gatekeeper/pkg/account"
)

const (
	memberPrefix   = "member:"
	memberCountKey = "member.count"

	// vote entries are sequence numbered under the candidate so that
	// iteration order equals cast order
	votePrefix      = "vote:"      // vote:<len><candidate><seq>
	voteMarkPrefix  = "votemark:"  // votemark:<len><candidate><voter>
	voteCountPrefix = "votecount:" // votecount:<len><candidate>
)

var _ Store = (*LevelDBStore)(nil)

// LevelDBStore is a Store persisted in a leveldb database. The scheme of
// the uri selects the backend: "file://<path>" opens an on-disk database
// and "memory://" an in-memory one, which is what the tests run on.
//
// Every compound mutation (recording a vote, promoting a candidate) is
// written as a single batch, so a crash can never leave the membership
// set and the vote ledger disagreeing with each other.
type LevelDBStore struct {
	mtx sync.Mutex
	db  *leveldb.DB
}

func NewLevelDBStore(uri string) (*LevelDBStore, error) {
	var (
		db  *leveldb.DB
		err error
	)
	switch {
	case uri == "memory://":
		db, err = leveldb.Open(leveldbStorage.NewMemStorage(), nil)
	case strings.HasPrefix(uri, "file://"):
		db, err = leveldb.OpenFile(strings.TrimPrefix(uri, "file://"), nil)
	default:
		return nil, fmt.Errorf("unknown store scheme in %q", uri)
	}
	if err != nil {
		return nil, fmt.Errorf("opening leveldb store: %w", err)
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) IsMember(id account.ID) (bool, error) {
	ok, err := s.db.Has(memberKey(id), nil)
	if err != nil {
		return false, fmt.Errorf("reading member %s: %w", id, err)
	}
	return ok, nil
}

func (s *LevelDBStore) AddMember(id account.ID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	ok, err := s.db.Has(memberKey(id), nil)
	if err != nil {
		return fmt.Errorf("reading member %s: %w", id, err)
	}
	if ok {
		return nil
	}
	count, err := s.count([]byte(memberCountKey))
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(memberKey(id), nil)
	batch.Put([]byte(memberCountKey), encodeCount(count+1))
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("writing member %s: %w", id, err)
	}
	return nil
}

func (s *LevelDBStore) NumMembers() (int, error) {
	count, err := s.count([]byte(memberCountKey))
	return int(count), err
}

func (s *LevelDBStore) Members() ([]account.ID, error) {
	var members []account.ID
	iter := s.db.NewIterator(leveldbUtil.BytesPrefix([]byte(memberPrefix)), nil)
	defer iter.Release()
	for iter.Next() {
		members = append(members, account.ID(iter.Key()[len(memberPrefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}
	return members, nil
}

func (s *LevelDBStore) HasVoted(candidate, voter account.ID) (bool, error) {
	ok, err := s.db.Has(voteMarkKey(candidate, voter), nil)
	if err != nil {
		return false, fmt.Errorf("reading vote (%s, %s): %w", candidate, voter, err)
	}
	return ok, nil
}

func (s *LevelDBStore) RecordVote(candidate, voter account.ID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	// votes are never removed individually, so the counter doubles as
	// the next sequence number
	seq, err := s.count(voteCountKey(candidate))
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(voteKey(candidate, seq), []byte(voter))
	batch.Put(voteMarkKey(candidate, voter), nil)
	batch.Put(voteCountKey(candidate), encodeCount(seq+1))
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("writing vote (%s, %s): %w", candidate, voter, err)
	}
	return nil
}

func (s *LevelDBStore) CountVotersFor(candidate account.ID) (int, error) {
	count, err := s.count(voteCountKey(candidate))
	return int(count), err
}

func (s *LevelDBStore) VotersFor(candidate account.ID) ([]account.ID, error) {
	var voters []account.ID
	iter := s.db.NewIterator(leveldbUtil.BytesPrefix(candidatePrefix(candidate)), nil)
	defer iter.Release()
	for iter.Next() {
		voters = append(voters, account.ID(iter.Value()))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterating votes for %s: %w", candidate, err)
	}
	return voters, nil
}

func (s *LevelDBStore) DrainVotersFor(candidate account.ID) ([]account.ID, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	voters, batch, err := s.drainBatch(candidate)
	if err != nil {
		return nil, err
	}
	if err := s.db.Write(batch, nil); err != nil {
		return nil, fmt.Errorf("draining votes for %s: %w", candidate, err)
	}
	return voters, nil
}

func (s *LevelDBStore) Promote(candidate account.ID) ([]account.ID, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	voters, batch, err := s.drainBatch(candidate)
	if err != nil {
		return nil, err
	}
	ok, err := s.db.Has(memberKey(candidate), nil)
	if err != nil {
		return nil, fmt.Errorf("reading member %s: %w", candidate, err)
	}
	if !ok {
		count, err := s.count([]byte(memberCountKey))
		if err != nil {
			return nil, err
		}
		batch.Put(memberKey(candidate), nil)
		batch.Put([]byte(memberCountKey), encodeCount(count+1))
	}
	if err := s.db.Write(batch, nil); err != nil {
		return nil, fmt.Errorf("promoting %s: %w", candidate, err)
	}
	return voters, nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

// drainBatch collects the recorded voters for the candidate, in cast
// order, along with a batch deleting every trace of them.
func (s *LevelDBStore) drainBatch(candidate account.ID) ([]account.ID, *leveldb.Batch, error) {
	var voters []account.ID
	batch := new(leveldb.Batch)

	iter := s.db.NewIterator(leveldbUtil.BytesPrefix(candidatePrefix(candidate)), nil)
	defer iter.Release()
	for iter.Next() {
		voter := account.ID(iter.Value())
		voters = append(voters, voter)
		batch.Delete(append([]byte(nil), iter.Key()...))
		batch.Delete(voteMarkKey(candidate, voter))
	}
	if err := iter.Error(); err != nil {
		return nil, nil, fmt.Errorf("iterating votes for %s: %w", candidate, err)
	}
	batch.Delete(voteCountKey(candidate))
	return voters, batch, nil
}

func (s *LevelDBStore) count(key []byte) (uint64, error) {
	raw, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading counter %q: %w", key, err)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func encodeCount(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func memberKey(id account.ID) []byte {
	return []byte(memberPrefix + string(id))
}

// encodeID length prefixes an account id inside compound keys. Ids are
// arbitrary byte strings, so a raw separator would let one candidate's
// entries alias another's.
func encodeID(id account.ID) []byte {
	return append(encodeCount(uint64(len(id))), id...)
}

func candidatePrefix(candidate account.ID) []byte {
	return append([]byte(votePrefix), encodeID(candidate)...)
}

func voteKey(candidate account.ID, seq uint64) []byte {
	return append(candidatePrefix(candidate), encodeCount(seq)...)
}

func voteMarkKey(candidate, voter account.ID) []byte {
	key := append([]byte(voteMarkPrefix), encodeID(candidate)...)
	return append(key, voter...)
}

func voteCountKey(candidate account.ID) []byte {
	return append([]byte(voteCountPrefix), encodeID(candidate)...)
}
