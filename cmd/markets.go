package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// marketsCmd holds the flags for the 'markets' subcommand.
type marketsCmd struct {
	search    string
	sort      string
	order     string
	page      int
	size      int
	favorites bool
	json      bool
}

func (*marketsCmd) Name() string     { return "markets" }
func (*marketsCmd) Synopsis() string { return "list the top coins by market cap" }
func (*marketsCmd) Usage() string {
	return `cfl markets [-q <text>] [-sort <key>] [-order asc|desc] [-page <n>] [-size <n>] [-fav] [-json]

  Lists the top coins. Coins are filtered by name, optionally restricted to
  favorites, sorted and paginated.

  Sort keys: rank, name, symbol, price, 1h, 24h, 7d, cap, volume,
  circulating_supply, total_supply, max_supply, fav.
  A sort key other than the current one sorts descending unless -order is given.
`
}

func (c *marketsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "q", "", "only coins whose name contains this text (case insensitive)")
	f.StringVar(&c.sort, "sort", "", "sort key")
	f.StringVar(&c.order, "order", "", "sort direction: asc or desc")
	f.IntVar(&c.page, "page", 1, "page to display, starting at 1")
	f.IntVar(&c.size, "size", 0, "rows per page, defaults to the configuration")
	f.BoolVar(&c.favorites, "fav", false, "only favorite coins")
	f.BoolVar(&c.json, "json", false, "print the page as JSON")
}

// state converts the flags into a list state.
func (c *marketsCmd) state(defaultSize int) (coinfolio.ListState, error) {
	s := coinfolio.NewListState()
	if c.sort != "" {
		key, err := coinfolio.ParseSortKey(c.sort)
		if err != nil {
			return s, err
		}
		// the default key keeps its ascending order
		if key != s.Sort.Key {
			s.SortBy(key)
		}
	}
	if c.order != "" {
		dir, err := coinfolio.ParseDirection(c.order)
		if err != nil {
			return s, err
		}
		s.Sort.Direction = dir
	}
	size := c.size
	if size <= 0 {
		size = defaultSize
	}
	s.SetPageSize(size)
	s.SetSearch(c.search)
	s.SetFavoritesOnly(c.favorites)
	s.GoTo(c.page)
	return s, nil
}

func (c *marketsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		state, err := c.state(a.cfg.PageSize)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}

		tr, s := a.tracker(ctx)
		if s != nil {
			if err := tr.LoadFavorites(ctx); err != nil {
				fmt.Fprintf(stderr, "Warning: %v\n", err)
			}
		} else if state.FavoritesOnly {
			return failure("listing favorites", coinfolio.ErrNotSignedIn)
		}
		if err := tr.LoadMarkets(ctx); err != nil {
			return failure("loading markets", err)
		}

		view := tr.MarketView(state)
		if c.json {
			return jsonStatus(printJSON(marketPage{
				Page:       state.Page.Page,
				TotalPages: view.TotalPages,
				TotalRows:  view.TotalRows,
				Sort:       string(state.Sort.Key),
				Order:      state.Sort.Direction.String(),
				Coins:      view.Rows,
			}))
		}
		printMarkdown(renderer.MarketMarkdown(renderer.MarketList{
			View:      view,
			State:     state,
			Favorites: tr.Favorites(),
			Currency:  tr.Currency().Code,
		}))
		return subcommands.ExitSuccess
	})
}

type marketPage struct {
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	TotalRows  int              `json:"total_rows"`
	Sort       string           `json:"sort"`
	Order      string           `json:"order"`
	Coins      []coinfolio.Coin `json:"coins"`
}

func jsonStatus(err error) subcommands.ExitStatus {
	if err != nil {
		return failure("printing JSON", err)
	}
	return subcommands.ExitSuccess
}
