package cmd

import (
	"testing"

	"github.com/etnz/coinfolio"
)

func TestMarketsState(t *testing.T) {
	tests := []struct {
		name string
		cmd  marketsCmd
		want coinfolio.ListState
	}{
		{
			name: "defaults",
			cmd:  marketsCmd{page: 1},
			want: coinfolio.ListState{Sort: coinfolio.DefaultSort(), Page: coinfolio.PageState{Page: 1, Size: 25}},
		},
		{
			name: "new key sorts descending",
			cmd:  marketsCmd{sort: "24h", page: 2, size: 10},
			want: coinfolio.ListState{
				Sort: coinfolio.SortState{Key: coinfolio.SortByChange24h, Direction: coinfolio.Descending},
				Page: coinfolio.PageState{Page: 2, Size: 10},
			},
		},
		{
			name: "rank keeps ascending",
			cmd:  marketsCmd{sort: "rank", page: 1},
			want: coinfolio.ListState{Sort: coinfolio.DefaultSort(), Page: coinfolio.PageState{Page: 1, Size: 25}},
		},
		{
			name: "rank reversed with an explicit order",
			cmd:  marketsCmd{sort: "rank", order: "desc", page: 1},
			want: coinfolio.ListState{
				Sort: coinfolio.SortState{Key: coinfolio.SortByRank, Direction: coinfolio.Descending},
				Page: coinfolio.PageState{Page: 1, Size: 25},
			},
		},
		{
			name: "explicit order",
			cmd:  marketsCmd{sort: "name", order: "asc", page: 3, search: "bit", favorites: true},
			want: coinfolio.ListState{
				Search:        "bit",
				FavoritesOnly: true,
				Sort:          coinfolio.SortState{Key: coinfolio.SortByName, Direction: coinfolio.Ascending},
				Page:          coinfolio.PageState{Page: 3, Size: 25},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.state(25)
			if err != nil {
				t.Fatalf("state() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("state() = %+v, want %+v", got, tt.want)
			}
		})
	}

	for _, bad := range []marketsCmd{{sort: "color"}, {order: "sideways"}} {
		if _, err := bad.state(25); err == nil {
			t.Errorf("state(%+v) succeeded", bad)
		}
	}
}
