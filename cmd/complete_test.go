package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
)

func TestCompletion(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("cfl", flag.ContinueOnError), "cfl")
	Register(commander)
	c := Completion(commander)

	for _, name := range []string{"markets", "coin", "fav", "portfolio", "add", "set", "rm", "signup", "login", "logout", "passwd", "profile", "avatar", "topic"} {
		if c.Sub[name] == nil {
			t.Errorf("command %q is not completed", name)
		}
	}
	markets := c.Sub["markets"]
	for _, f := range []string{"q", "sort", "order", "page", "size", "fav", "json"} {
		if markets.Flags[f] == nil {
			t.Errorf("markets flag %q is not completed", f)
		}
	}
	if got := markets.Flags["order"].Predict(""); len(got) != 2 {
		t.Errorf("order predictions = %v, want asc and desc", got)
	}
	if got := markets.Flags["sort"].Predict(""); len(got) != len(sortKeys()) {
		t.Errorf("sort predictions = %v", got)
	}
	if c.Sub["avatar"].Args == nil {
		t.Error("avatar arguments are not completed")
	}
	if got := c.Sub["topic"].Args.Predict(""); len(got) == 0 {
		t.Error("topic arguments are not completed")
	}
	if c.Flags["config"] == nil {
		t.Error("global flag config is not completed")
	}
}

func TestSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	if _, err := loadSession(path); !os.IsNotExist(err) {
		t.Fatalf("loadSession(missing) error = %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSession(path); err == nil {
		t.Error("loadSession(corrupted) succeeded")
	}
	if err := removeSession(path); err != nil {
		t.Fatalf("removeSession() error = %v", err)
	}
	if err := removeSession(path); err != nil {
		t.Errorf("removeSession(missing) error = %v", err)
	}
}
