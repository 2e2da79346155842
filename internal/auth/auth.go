// Package auth provides tracker API token management.
// It implements a simple interface with multiple providers so callers only
// ever ask for "the token" and never care where it came from.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// TokenEnvVar is the environment variable holding the tracker API token.
const TokenEnvVar = "PIVOTAL_TRACKER_TOKEN"

// ErrNoToken indicates that no provider could supply a token.
var ErrNoToken = errors.New("no tracker token available")

// TokenProvider defines the interface for obtaining a tracker API token.
// Implementations may use different sources (environment, credential files, etc).
type TokenProvider interface {
	GetToken() (string, error)
}

// EnvProvider obtains tokens from an environment variable.
// Var defaults to TokenEnvVar when empty.
type EnvProvider struct {
	Var string
}

// GetToken reads the configured environment variable.
// Returns an error if the variable is not set or is empty.
func (e *EnvProvider) GetToken() (string, error) {
	name := e.Var
	if name == "" {
		name = TokenEnvVar
	}
	token := strings.TrimSpace(os.Getenv(name))
	if token == "" {
		return "", fmt.Errorf("%s environment variable not set or empty", name)
	}
	return token, nil
}

// FileProvider obtains tokens from a dotenv-formatted credentials file,
// by default ~/.epicgantt.env.
type FileProvider struct {
	Path string
}

// DefaultCredentialsPath returns the per-user credentials file location.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".epicgantt.env")
}

// GetToken reads TokenEnvVar from the credentials file.
func (f *FileProvider) GetToken() (string, error) {
	path := f.Path
	if path == "" {
		path = DefaultCredentialsPath()
	}
	if path == "" {
		return "", errors.New("no credentials file location")
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	token := strings.TrimSpace(values[TokenEnvVar])
	if token == "" {
		return "", fmt.Errorf("%s not set in %s", TokenEnvVar, path)
	}
	return token, nil
}

// Chain tries each provider in order and returns the first token found.
type Chain []TokenProvider

// GetToken returns the first successful provider's token, or ErrNoToken
// wrapping every provider's failure.
func (c Chain) GetToken() (string, error) {
	var errs []error
	for _, p := range c {
		token, err := p.GetToken()
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", ErrNoToken, errors.Join(errs...))
}

// GetToken attempts to obtain a tracker token using the following strategy:
// 1. PIVOTAL_TRACKER_TOKEN environment variable (a project .env is already loaded by config)
// 2. The per-user credentials file
// 3. Return a clear, actionable error if both fail
func GetToken() (string, error) {
	token, err := Chain{&EnvProvider{}, &FileProvider{}}.GetToken()
	if err != nil {
		return "", fmt.Errorf(
			"failed to obtain tracker token: %w\n"+
				"Please either:\n"+
				"  1. Set the %s environment variable (or put it in ./.env), or\n"+
				"  2. Add %s=<token> to %s",
			err, TokenEnvVar, TokenEnvVar, DefaultCredentialsPath(),
		)
	}
	return token, nil
}
