package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts in this test")
	}
	dir := t.TempDir()
	script := `#!/bin/sh
echo "args=$*"
echo "config=$COINFOLIO_CONFIG"
echo "session=$COINFOLIO_SESSION_FILE"
echo "currency=$COINFOLIO_CURRENCY"
echo "verbose=$COINFOLIO_VERBOSE"
exit 3
`
	if err := os.WriteFile(filepath.Join(dir, "cfl-hello"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("COINFOLIO_SESSION_FILE", "")

	oldConfig, oldSession, oldCurrency, oldVerbose := *configFile, *sessionFile, *currencyFlag, *Verbose
	*configFile, *sessionFile, *currencyFlag, *Verbose = "/tmp/cfl.yml", "/tmp/session.json", "TRY", true
	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() {
		*configFile, *sessionFile, *currencyFlag, *Verbose = oldConfig, oldSession, oldCurrency, oldVerbose
		stdout = os.Stdout
	})

	found, code := RunExtension("hello", []string{"a", "b"})
	if !found {
		t.Fatal("cfl-hello not found")
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	for _, want := range []string{
		"args=a b",
		"config=/tmp/cfl.yml",
		"session=/tmp/session.json",
		"currency=TRY",
		"verbose=true",
	} {
		if !strings.Contains(out.String(), want+"\n") {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}

	if found, _ := RunExtension("nope-does-not-exist", nil); found {
		t.Error("RunExtension found a missing extension")
	}
}
