package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type coinCmd struct {
	days   int
	toggle bool
}

func (*coinCmd) Name() string     { return "coin" }
func (*coinCmd) Synopsis() string { return "display the detail of a coin" }
func (*coinCmd) Usage() string {
	return `cfl coin [-days <n>] [-fav] <coin-id>

  Displays the market data of a coin, its price range over the last days and
  links to its chart and homepage. With -fav, toggles the coin in the
  favorites first.
`
}

func (c *coinCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 1, "days of price history to summarize")
	f.BoolVar(&c.toggle, "fav", false, "toggle the coin in the favorites")
}

func (c *coinCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: expecting exactly one coin id")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		tr, s := a.tracker(ctx)
		if c.toggle && s == nil {
			return failure("toggling the favorite", coinfolio.ErrNotSignedIn)
		}
		if s != nil {
			if err := tr.LoadFavorites(ctx); err != nil {
				fmt.Fprintf(stderr, "Warning: %v\n", err)
			}
		}
		if c.toggle {
			on, err := tr.ToggleFavorite(ctx, id)
			if err != nil {
				return failure("toggling the favorite", err)
			}
			fmt.Fprintln(stderr, favoriteNotice(id, on))
		}

		detail, err := tr.CoinDetail(ctx, id)
		if err != nil {
			return failure("loading the coin", err)
		}
		chart, err := tr.MarketChart(ctx, id, c.days)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		}
		printMarkdown(renderer.CoinMarkdown(renderer.CoinPage{
			Detail:   detail,
			Chart:    chart,
			Favorite: tr.Favorites().Contains(id),
			Currency: tr.Currency().Code,
		}))
		return subcommands.ExitSuccess
	})
}

func favoriteNotice(id string, on bool) string {
	if on {
		return fmt.Sprintf("%s added to the favorites.", id)
	}
	return fmt.Sprintf("%s removed from the favorites.", id)
}

type favCmd struct{}

func (*favCmd) Name() string             { return "fav" }
func (*favCmd) Synopsis() string         { return "toggle favorite coins" }
func (*favCmd) SetFlags(f *flag.FlagSet) {}
func (*favCmd) Usage() string {
	return `cfl fav [<coin-id>...]

  Toggles each coin in the favorites. Without argument, lists the favorites.
`
}

func (c *favCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		tr, _, err := a.userTracker(ctx)
		if err != nil {
			return failure("loading favorites", err)
		}
		if err := tr.LoadFavorites(ctx); err != nil {
			return failure("loading favorites", err)
		}
		for _, id := range f.Args() {
			on, err := tr.ToggleFavorite(ctx, id)
			if err != nil {
				return failure("toggling "+id, err)
			}
			fmt.Fprintln(stderr, favoriteNotice(id, on))
		}
		if f.NArg() > 0 {
			return subcommands.ExitSuccess
		}
		for _, id := range tr.Favorites().IDs() {
			fmt.Fprintln(stdout, id)
		}
		return subcommands.ExitSuccess
	})
}
