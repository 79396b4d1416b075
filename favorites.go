package coinfolio

import "slices"

// FavoriteSet is the set of coin ids a user marked as favorite.
//
// Ids are kept in insertion order and never duplicated. A FavoriteSet is
// immutable: Toggled returns a new set so that the caller can persist it before
// adopting it. The nil *FavoriteSet is a valid empty set.
type FavoriteSet struct {
	ids   []string
	index map[string]struct{}
}

// NewFavoriteSet returns a set of the given ids, duplicates and empty ids
// removed.
func NewFavoriteSet(ids ...string) *FavoriteSet {
	s := &FavoriteSet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Contains reports whether id is a favorite.
func (s *FavoriteSet) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Len returns the number of favorites.
func (s *FavoriteSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns a copy of the ids in insertion order.
func (s *FavoriteSet) IDs() []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s.ids)
}

// Toggled returns the set with id removed if it was present, or appended if it
// was not, and whether id is a favorite in the returned set.
func (s *FavoriteSet) Toggled(id string) (*FavoriteSet, bool) {
	if s.Contains(id) {
		return NewFavoriteSet(slices.DeleteFunc(s.IDs(), func(x string) bool { return x == id })...), false
	}
	return NewFavoriteSet(append(s.IDs(), id)...), true
}
