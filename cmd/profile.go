package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type profileCmd struct {
	first, last string
	json        bool
}

func (*profileCmd) Name() string     { return "profile" }
func (*profileCmd) Synopsis() string { return "display or edit the profile" }
func (*profileCmd) Usage() string {
	return `cfl profile [-first <name>] [-last <name>] [-json]

  Displays the profile of the signed in user. -first and -last update the
  names, an unset one is kept.
`
}

func (c *profileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.first, "first", "", "new first name")
	f.StringVar(&c.last, "last", "", "new last name")
	f.BoolVar(&c.json, "json", false, "print the profile as JSON")
}

func (c *profileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		s, err := a.session(ctx)
		if err != nil {
			return failure("loading the profile", err)
		}
		svc := coinfolio.NewProfileService(s, a.backend, a.avatars)
		p, err := svc.Load(ctx)
		if err != nil {
			return failure("loading the profile", err)
		}
		if c.first != "" || c.last != "" {
			first, last := p.FirstName, p.LastName
			if c.first != "" {
				first = c.first
			}
			if c.last != "" {
				last = c.last
			}
			if err := svc.SaveName(ctx, first, last); err != nil {
				return failure("saving the profile", err)
			}
			if p, err = svc.Load(ctx); err != nil {
				return failure("loading the profile", err)
			}
		}
		if c.json {
			return jsonStatus(printJSON(p))
		}
		printMarkdown(renderer.ProfileMarkdown(p, s.Email))
		return subcommands.ExitSuccess
	})
}

type avatarCmd struct{}

func (*avatarCmd) Name() string             { return "avatar" }
func (*avatarCmd) Synopsis() string         { return "upload a profile picture" }
func (*avatarCmd) SetFlags(f *flag.FlagSet) {}
func (*avatarCmd) Usage() string {
	return `cfl avatar <image-file>

  Uploads a png, jpeg, gif or webp picture as the profile avatar, replacing the
  previous one.
`
}

func (c *avatarCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: expecting one image file")
		return subcommands.ExitUsageError
	}
	file := f.Arg(0)
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		s, err := a.session(ctx)
		if err != nil {
			return failure("uploading the avatar", err)
		}
		r, err := os.Open(file)
		if err != nil {
			return failure("opening the picture", err)
		}
		defer r.Close()

		svc := coinfolio.NewProfileService(s, a.backend, a.avatars)
		url, err := svc.UploadAvatar(ctx, filepath.Base(file), r)
		if err != nil {
			return failure("uploading the avatar", err)
		}
		fmt.Fprintf(stdout, "%s\n", url)
		return subcommands.ExitSuccess
	})
}
