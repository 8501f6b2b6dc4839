package flagstore

import (
	"sync"

	"github.com/mcdev12/rootleague/go/internal/models"
)

// MemoryStore is an in-process Store, used in tests and when no file is configured.
type MemoryStore struct {
	mu      sync.Mutex
	matches map[int]*record
	persist func(map[int]*record) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{matches: make(map[int]*record)}
}

func (s *MemoryStore) get(matchID int) *record {
	r, ok := s.matches[matchID]
	if !ok {
		r = &record{}
		s.matches[matchID] = r
	}
	return r
}

// save is called with the lock held after every mutation.
func (s *MemoryStore) save() error {
	if s.persist == nil {
		return nil
	}
	return s.persist(s.matches)
}

func (s *MemoryStore) Flag(matchID int, kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.matches[matchID]; ok {
		return r.Flags[kind]
	}
	return false
}

func (s *MemoryStore) SetFlag(matchID int, kind Kind, value bool) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.get(matchID)
	if r.Flags == nil {
		r.Flags = make(map[Kind]bool)
	}
	if value {
		r.Flags[kind] = true
	} else {
		delete(r.Flags, kind)
	}
	return s.save()
}

func (s *MemoryStore) ManualRaces(matchID int) map[int]models.Race {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]models.Race)
	if r, ok := s.matches[matchID]; ok {
		for k, v := range r.Races {
			out[k] = v
		}
	}
	return out
}

func (s *MemoryStore) SetManualRace(matchID, playerID int, race models.Race) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.get(matchID)
	if r.Races == nil {
		r.Races = make(map[int]models.Race)
	}
	r.Races[playerID] = race
	return s.save()
}

func (s *MemoryStore) ManualOrder(matchID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.matches[matchID]; ok {
		return append([]int(nil), r.Order...)
	}
	return nil
}

// AppendManualOrder records playerID as the next picker; repeats are ignored.
func (s *MemoryStore) AppendManualOrder(matchID, playerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.get(matchID)
	for _, id := range r.Order {
		if id == playerID {
			return nil
		}
	}
	r.Order = append(r.Order, playerID)
	return s.save()
}

func (s *MemoryStore) ClearManualPicks(matchID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.matches[matchID]
	if !ok {
		return nil
	}
	r.Races = nil
	r.Order = nil
	return s.save()
}
