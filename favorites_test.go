package coinfolio

import (
	"reflect"
	"testing"
)

func TestFavoriteSet(t *testing.T) {
	s := NewFavoriteSet("a", "b", "a", "", "c")
	if got, want := s.IDs(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if !s.Contains("b") || s.Contains("z") {
		t.Errorf("Contains() is wrong on %v", s.IDs())
	}

	next, on := s.Toggled("b")
	if on || next.Contains("b") {
		t.Errorf("Toggled(b) = %v, %v, want b removed", next.IDs(), on)
	}
	if !s.Contains("b") {
		t.Errorf("Toggled modified its receiver")
	}

	next, on = next.Toggled("z")
	if !on || !reflect.DeepEqual(next.IDs(), []string{"a", "c", "z"}) {
		t.Errorf("Toggled(z) = %v, %v, want z appended", next.IDs(), on)
	}
}

func TestFavoriteSet_Nil(t *testing.T) {
	var s *FavoriteSet
	if s.Contains("a") || s.Len() != 0 || len(s.IDs()) != 0 {
		t.Errorf("nil set is not empty")
	}
	next, on := s.Toggled("a")
	if !on || next.Len() != 1 {
		t.Errorf("Toggled on nil = %v, %v", next.IDs(), on)
	}
}
