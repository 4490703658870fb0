package store

import (
	"sync"

	"github.com/cmwaters/gatekeeper/pkg/account"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store. It is the backend used in tests and a
// reasonable choice for hosts that persist the allow-list through their
// own state machinery and only need the gatekeeper's bookkeeping.
type MemStore struct {
	mtx sync.RWMutex

	members     map[account.ID]struct{}
	memberOrder []account.ID

	votes     map[account.ID]map[account.ID]struct{}
	voteOrder map[account.ID][]account.ID
}

func NewMemStore() *MemStore {
	return &MemStore{
		members:   make(map[account.ID]struct{}),
		votes:     make(map[account.ID]map[account.ID]struct{}),
		voteOrder: make(map[account.ID][]account.ID),
	}
}

func (s *MemStore) IsMember(id account.ID) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	_, ok := s.members[id]
	return ok, nil
}

func (s *MemStore) AddMember(id account.ID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.addMember(id)
	return nil
}

func (s *MemStore) NumMembers() (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.members), nil
}

func (s *MemStore) Members() ([]account.ID, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	members := make([]account.ID, len(s.memberOrder))
	copy(members, s.memberOrder)
	return members, nil
}

func (s *MemStore) HasVoted(candidate, voter account.ID) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	voters, ok := s.votes[candidate]
	if !ok {
		return false, nil
	}
	_, ok = voters[voter]
	return ok, nil
}

func (s *MemStore) RecordVote(candidate, voter account.ID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	voters, ok := s.votes[candidate]
	if !ok {
		voters = make(map[account.ID]struct{})
		s.votes[candidate] = voters
	}
	if _, ok := voters[voter]; ok {
		return nil
	}
	voters[voter] = struct{}{}
	s.voteOrder[candidate] = append(s.voteOrder[candidate], voter)
	return nil
}

func (s *MemStore) CountVotersFor(candidate account.ID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.votes[candidate]), nil
}

func (s *MemStore) VotersFor(candidate account.ID) ([]account.ID, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	order := s.voteOrder[candidate]
	voters := make([]account.ID, len(order))
	copy(voters, order)
	return voters, nil
}

func (s *MemStore) DrainVotersFor(candidate account.ID) ([]account.ID, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.drainVotersFor(candidate), nil
}

func (s *MemStore) Promote(candidate account.ID) ([]account.ID, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	voters := s.drainVotersFor(candidate)
	s.addMember(candidate)
	return voters, nil
}

func (s *MemStore) Close() error {
	return nil
}

func (s *MemStore) addMember(id account.ID) {
	if _, ok := s.members[id]; ok {
		return
	}
	s.members[id] = struct{}{}
	s.memberOrder = append(s.memberOrder, id)
}

func (s *MemStore) drainVotersFor(candidate account.ID) []account.ID {
	voters := s.voteOrder[candidate]
	delete(s.votes, candidate)
	delete(s.voteOrder, candidate)
	return voters
}
