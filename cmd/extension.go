package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/etnz/coinfolio/logger"
)

const (
	EnvConfigFile  = "COINFOLIO_CONFIG"
	EnvSessionFile = "COINFOLIO_SESSION_FILE"
	EnvCurrency    = "COINFOLIO_CURRENCY"
	EnvVerbose     = "COINFOLIO_VERBOSE"
)

// RunExtension attempts to find and execute an external cfl-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "cfl-" + subcommand
	log := logger.GetLogger().WithComponent("extension")

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.WithError(err).Debugf("external command %q not found in PATH", externalCmdName)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Pass global flags as environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, EnvConfigFile+"="+*configFile)
	if *sessionFile != "" {
		cmd.Env = append(cmd.Env, EnvSessionFile+"="+*sessionFile)
	}
	if *currencyFlag != "" {
		cmd.Env = append(cmd.Env, EnvCurrency+"="+*currencyFlag)
	}
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(*Verbose))

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				return true, status.ExitStatus()
			}
		}
		fmt.Fprintf(stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
