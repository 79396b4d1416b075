package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors completes the values of the flags that take a known set.
var flagPredictors = map[string]complete.Predictor{
	"sort":         predict.Set(sortKeys()),
	"order":        predict.Set{"asc", "desc"},
	"currency":     predict.Set{coinfolio.AutoCurrency, "USD", "EUR", "TRY", "GBP", "JPY"},
	"config":       predict.Files("*.yml"),
	"session-file": predict.Files("*.json"),
}

// argPredictors completes the positional arguments of some commands.
var argPredictors = map[string]complete.Predictor{
	"avatar": predict.Files("*"),
	"topic":  predict.Set(topicNames()),
}

func topicNames() []string {
	names, _ := docs.All()
	return append(names, "*")
}

func sortKeys() []string {
	return []string{"rank", "name", "symbol", "price", "1h", "24h", "7d", "cap", "volume",
		string(coinfolio.SortByCirculatingSupply), string(coinfolio.SortByTotalSupply), string(coinfolio.SortByMaxSupply), "fav"}
}

// Commands returns the registered commands by name.
func Commands(c *subcommands.Commander) map[string]subcommands.Command {
	res := map[string]subcommands.Command{}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		res[cmd.Name()] = cmd
	})
	return res
}

// Completion describes the commands and their flags for shell completion.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictFlags(flag.CommandLine),
	}
	for name, cmd := range Commands(c) {
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		cmd.SetFlags(fs)
		root.Sub[name] = &complete.Command{
			Flags: predictFlags(fs),
			Args:  argPredictors[name],
		}
	}
	return root
}

func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Name, "test.") {
			return
		}
		switch p, ok := flagPredictors[f.Name]; {
		case ok:
			flags[f.Name] = p
		case isBool(f):
			flags[f.Name] = predict.Nothing
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
