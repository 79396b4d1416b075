package coinfolio

// ListState is the user-controlled state of the market list.
//
// Changing the search text, the favorites-only scope or the page size moves
// back to the first page, so that a narrower result never leaves the list on an
// empty page past its end.
type ListState struct {
	Search        string
	FavoritesOnly bool
	Sort          SortState
	Page          PageState
}

// NewListState returns the state of a freshly loaded list.
func NewListState() ListState {
	return ListState{Sort: DefaultSort(), Page: FirstPage()}
}

func (s *ListState) SetSearch(text string) {
	if text == s.Search {
		return
	}
	s.Search = text
	s.Page.Page = 1
}

func (s *ListState) SetFavoritesOnly(on bool) {
	if on == s.FavoritesOnly {
		return
	}
	s.FavoritesOnly = on
	s.Page.Page = 1
}

func (s *ListState) SetPageSize(size int) {
	if size == s.Page.Size {
		return
	}
	s.Page = PageState{Page: 1, Size: size}
}

// SortBy toggles the sort on key. The current page is kept.
func (s *ListState) SortBy(key SortKey) {
	s.Sort = s.Sort.Toggle(key)
}

// GoTo selects a page. Out of range pages are accepted and render empty.
func (s *ListState) GoTo(page int) {
	s.Page.Page = page
}

// View computes the visible page of coins.
func (s ListState) View(coins []Coin, favorites *FavoriteSet) View {
	return ComputeView(coins, favorites, s.Search, s.Sort, s.FavoritesOnly, s.Page)
}
