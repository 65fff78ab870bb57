package ws

import (
	"slices"
	"strings"
	"sync"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/samber/lo"
)

// Membership is the two-way index between spaces and the identities in them.
// An identity is in at most one space.
type Membership struct {
	mu      sync.RWMutex
	members map[domain.SpaceID]map[domain.UserID]struct{}
	spaces  map[domain.UserID]domain.SpaceID
}

func NewMembership() *Membership {
	return &Membership{
		members: make(map[domain.SpaceID]map[domain.UserID]struct{}),
		spaces:  make(map[domain.UserID]domain.SpaceID),
	}
}

// Join puts id in space. When id was in another space it is removed from it
// first and that space is returned with moved set.
func (m *Membership) Join(id domain.UserID, space domain.SpaceID) (domain.SpaceID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, had := m.spaces[id]
	if had && prev == space {
		return "", false
	}
	if had {
		m.removeLocked(id, prev)
	}

	set, ok := m.members[space]
	if !ok {
		set = make(map[domain.UserID]struct{})
		m.members[space] = set
	}
	set[id] = struct{}{}
	m.spaces[id] = space

	return prev, had
}

// Leave removes id from its space and returns that space.
func (m *Membership) Leave(id domain.UserID) (domain.SpaceID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	space, ok := m.spaces[id]
	if !ok {
		return "", false
	}
	m.removeLocked(id, space)
	return space, true
}

func (m *Membership) removeLocked(id domain.UserID, space domain.SpaceID) {
	delete(m.spaces, id)

	set, ok := m.members[space]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m.members, space)
	}
}

// MembersOf returns the identities in space in ascending order. The slice is
// never nil.
func (m *Membership) MembersOf(space domain.SpaceID) []domain.UserID {
	m.mu.RLock()
	ids := lo.Keys(m.members[space])
	m.mu.RUnlock()

	slices.SortFunc(ids, compareIDs)
	return ids
}

func (m *Membership) SpaceOf(id domain.UserID) (domain.SpaceID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	space, ok := m.spaces[id]
	return space, ok
}

// Spaces returns the member count of every occupied space.
func (m *Membership) Spaces() map[domain.SpaceID]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return lo.MapValues(m.members, func(set map[domain.UserID]struct{}, _ domain.SpaceID) int {
		return len(set)
	})
}

// Len is the number of identities that are in some space.
func (m *Membership) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.spaces)
}

func (m *Membership) SpaceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members)
}

// compareIDs orders numeric identities by value and before any other string.
func compareIDs(a, b domain.UserID) int {
	an, bn := isDigits(string(a)), isDigits(string(b))
	switch {
	case an && bn:
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(string(a), string(b))
	case an:
		return -1
	case bn:
		return 1
	default:
		return strings.Compare(string(a), string(b))
	}
}

func isDigits(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
