package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// loadPortfolio prepares a user tracker with the market list and the valued
// positions. Remote failures are only warnings: positions on coins missing
// from the market list read as unknown, and prices fall back to the list.
func loadPortfolio(ctx context.Context, a *app) (*coinfolio.Tracker, error) {
	tr, _, err := a.userTracker(ctx)
	if err != nil {
		return nil, err
	}
	if err := tr.LoadMarkets(ctx); err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}
	err = tr.LoadPortfolio(ctx)
	var ferr *coinfolio.RemoteFetchError
	if errors.As(err, &ferr) {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		err = nil
	}
	return tr, err
}

type portfolioCmd struct {
	json bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display the valued portfolio" }
func (*portfolioCmd) Usage() string {
	return `cfl portfolio [-json]

  Displays each position with its latest price and value, and the total.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the valuation as JSON")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		tr, err := loadPortfolio(ctx, a)
		if err != nil {
			return failure("loading the portfolio", err)
		}
		if c.json {
			return jsonStatus(printJSON(tr.Valuation()))
		}
		printMarkdown(renderer.PortfolioMarkdown(tr.Valuation()))
		return subcommands.ExitSuccess
	})
}

type addCmd struct{}

func (*addCmd) Name() string             { return "add" }
func (*addCmd) Synopsis() string         { return "add an amount of a coin to the portfolio" }
func (*addCmd) SetFlags(f *flag.FlagSet) {}
func (*addCmd) Usage() string {
	return `cfl add <coin-id> <amount>

  Adds the amount to the position on the coin, creating it when there is none.

Usage Examples:
$ cfl add bitcoin 0.25
`
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(stderr, "Error: expecting a coin id and an amount")
		return subcommands.ExitUsageError
	}
	coinID, amount := f.Arg(0), f.Arg(1)

	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		tr, err := loadPortfolio(ctx, a)
		if err != nil {
			return failure("loading the portfolio", err)
		}
		if len(tr.Coins()) > 0 {
			if _, ok := tr.Catalog()[coinID]; !ok {
				fmt.Fprintf(stderr, "Warning: %s is not among the top coins, it will be valued when its price is known.\n", coinID)
			}
		}
		pos, err := tr.AddOrUpdate(ctx, coinID, amount)
		if err != nil {
			return failure("adding to the portfolio", err)
		}
		fmt.Fprintf(stderr, "Position %s now holds %s %s.\n", pos.ID, pos.Amount, pos.CoinID)
		printMarkdown(renderer.PortfolioMarkdown(tr.Valuation()))
		return subcommands.ExitSuccess
	})
}

type setCmd struct{}

func (*setCmd) Name() string             { return "set" }
func (*setCmd) Synopsis() string         { return "overwrite the amount of a position" }
func (*setCmd) SetFlags(f *flag.FlagSet) {}
func (*setCmd) Usage() string {
	return `cfl set <position-id> <amount>

  Replaces the amount of a position. Position ids are listed by 'cfl portfolio'.
`
}

func (c *setCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(stderr, "Error: expecting a position id and an amount")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		tr, err := loadPortfolio(ctx, a)
		if err != nil {
			return failure("loading the portfolio", err)
		}
		pos, err := tr.SetAmount(ctx, f.Arg(0), f.Arg(1))
		if err != nil {
			return failure("editing the position", err)
		}
		fmt.Fprintf(stderr, "Position %s now holds %s %s.\n", pos.ID, pos.Amount, pos.CoinID)
		return subcommands.ExitSuccess
	})
}

type rmCmd struct{}

func (*rmCmd) Name() string             { return "rm" }
func (*rmCmd) Synopsis() string         { return "remove positions" }
func (*rmCmd) SetFlags(f *flag.FlagSet) {}
func (*rmCmd) Usage() string {
	return `cfl rm <position-id>...

  Removes the positions. Removing an absent position is not an error.
`
}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: expecting at least one position id")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		tr, err := loadPortfolio(ctx, a)
		if err != nil {
			return failure("loading the portfolio", err)
		}
		for _, id := range f.Args() {
			if err := tr.Remove(ctx, id); err != nil {
				return failure("removing "+id, err)
			}
		}
		fmt.Fprintf(stderr, "Removed %d position(s).\n", f.NArg())
		return subcommands.ExitSuccess
	})
}
