package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/coinfolio"
)

// savedSession is the content of the session file.
type savedSession struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func loadSession(path string) (savedSession, error) {
	var saved savedSession
	data, err := os.ReadFile(path)
	if err != nil {
		return saved, err
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		return saved, fmt.Errorf("corrupted session file %q: %w", path, err)
	}
	if saved.Token == "" {
		return saved, coinfolio.ErrNotSignedIn
	}
	return saved, nil
}

// saveSession writes the session token, readable by the user only.
func saveSession(path string, s *coinfolio.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(savedSession{UserID: s.UserID, Email: s.Email, Token: s.Token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func removeSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// stdin is shared by the prompts so that buffered input is not lost between
// them.
var stdin = bufio.NewReader(os.Stdin)

// prompt asks for a value on stderr and reads one line, unless value is
// already set.
func prompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(stderr, "%s: ", label)
	line, err := stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("cannot read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
