package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/coinfolio"
	"github.com/google/subcommands"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "account email, prompted when missing")
	f.StringVar(&c.password, "password", "", "account password, prompted when missing")
}

func (c *credentials) read() error {
	var err error
	if c.email, err = prompt(c.email, "Email"); err != nil {
		return err
	}
	c.password, err = prompt(c.password, "Password")
	return err
}

type signupCmd struct {
	credentials
	confirm string
}

func (*signupCmd) Name() string     { return "signup" }
func (*signupCmd) Synopsis() string { return "create an account and sign in" }
func (*signupCmd) Usage() string {
	return `cfl signup [-email <email>] [-password <password> -confirm <password>]

  Creates an account and keeps the session for the next commands.
`
}

func (c *signupCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.SetFlags(f)
	f.StringVar(&c.confirm, "confirm", "", "password confirmation, prompted when missing")
}

func (c *signupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.read(); err != nil {
		return failure("reading credentials", err)
	}
	confirm, err := prompt(c.confirm, "Confirm password")
	if err != nil {
		return failure("reading credentials", err)
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		s, err := coinfolio.SignUp(ctx, a.backend, c.email, c.password, confirm, a.currency)
		if err != nil {
			return failure("signing up", err)
		}
		if err := saveSession(a.cfg.SessionFile, s); err != nil {
			return failure("saving the session", err)
		}
		fmt.Fprintf(stderr, "Welcome %s, you are signed in.\n", s.Email)
		return subcommands.ExitSuccess
	})
}

type loginCmd struct {
	credentials
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in" }
func (*loginCmd) Usage() string {
	return `cfl login [-email <email>] [-password <password>]

  Signs in and keeps the session for the next commands.
`
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.read(); err != nil {
		return failure("reading credentials", err)
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		s, err := coinfolio.SignIn(ctx, a.backend, c.email, c.password, a.currency)
		if err != nil {
			return failure("signing in", err)
		}
		if err := saveSession(a.cfg.SessionFile, s); err != nil {
			return failure("saving the session", err)
		}
		fmt.Fprintf(stderr, "Signed in as %s.\n", s.Email)
		return subcommands.ExitSuccess
	})
}

type logoutCmd struct{}

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "sign out" }
func (*logoutCmd) Usage() string            { return "cfl logout\n\n  Revokes the session and forgets it.\n" }
func (*logoutCmd) SetFlags(f *flag.FlagSet) {}

func (c *logoutCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		s, err := a.session(ctx)
		if err == nil {
			err = coinfolio.SignOut(ctx, a.backend, s)
		}
		// the local session is forgotten whatever the server says
		if rerr := removeSession(a.cfg.SessionFile); rerr != nil {
			return failure("removing the session", rerr)
		}
		if err != nil {
			return failure("signing out", err)
		}
		fmt.Fprintln(stderr, "Signed out.")
		return subcommands.ExitSuccess
	})
}

type passwdCmd struct {
	password string
	confirm  string
}

func (*passwdCmd) Name() string     { return "passwd" }
func (*passwdCmd) Synopsis() string { return "change the account password" }
func (*passwdCmd) Usage() string {
	return `cfl passwd [-password <password> -confirm <password>]

  Changes the password of the signed in account.
`
}

func (c *passwdCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.password, "password", "", "new password, prompted when missing")
	f.StringVar(&c.confirm, "confirm", "", "new password confirmation, prompted when missing")
}

func (c *passwdCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		s, err := a.session(ctx)
		if err != nil {
			return failure("changing the password", err)
		}
		password, err := prompt(c.password, "New password")
		if err != nil {
			return failure("reading the password", err)
		}
		confirm, err := prompt(c.confirm, "Confirm password")
		if err != nil {
			return failure("reading the password", err)
		}
		if err := coinfolio.ChangePassword(ctx, a.backend, s, password, confirm); err != nil {
			return failure("changing the password", err)
		}
		fmt.Fprintln(stderr, "Password changed.")
		return subcommands.ExitSuccess
	})
}
