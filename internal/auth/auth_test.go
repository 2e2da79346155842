package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	token string
	err   error
}

func (s staticProvider) GetToken() (string, error) {
	return s.token, s.err
}

func TestEnvProvider_GetToken_Success(t *testing.T) {
	t.Setenv(TokenEnvVar, "tracker_test_token_123")

	provider := &EnvProvider{}
	token, err := provider.GetToken()

	require.NoError(t, err)
	assert.Equal(t, "tracker_test_token_123", token)
}

func TestEnvProvider_GetToken_CustomVar(t *testing.T) {
	t.Setenv("OTHER_TOKEN", "  padded  ")

	token, err := (&EnvProvider{Var: "OTHER_TOKEN"}).GetToken()

	require.NoError(t, err)
	assert.Equal(t, "padded", token)
}

func TestEnvProvider_GetToken_Missing(t *testing.T) {
	t.Setenv(TokenEnvVar, "")

	provider := &EnvProvider{}
	token, err := provider.GetToken()

	assert.Error(t, err)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), TokenEnvVar)
}

func TestFileProvider_GetToken(t *testing.T) {
	dir := t.TempDir()

	t.Run("token present", func(t *testing.T) {
		path := filepath.Join(dir, "creds.env")
		require.NoError(t, os.WriteFile(path, []byte(TokenEnvVar+"=from_file\n"), 0o600))

		token, err := (&FileProvider{Path: path}).GetToken()
		require.NoError(t, err)
		assert.Equal(t, "from_file", token)
	})

	t.Run("token missing from file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.env")
		require.NoError(t, os.WriteFile(path, []byte("OTHER=1\n"), 0o600))

		_, err := (&FileProvider{Path: path}).GetToken()
		require.Error(t, err)
		assert.Contains(t, err.Error(), TokenEnvVar)
	})

	t.Run("file missing", func(t *testing.T) {
		_, err := (&FileProvider{Path: filepath.Join(dir, "nope.env")}).GetToken()
		assert.Error(t, err)
	})
}

func TestChain_FirstSuccessWins(t *testing.T) {
	chain := Chain{
		staticProvider{err: errors.New("first failed")},
		staticProvider{token: "second"},
		staticProvider{token: "third"},
	}

	token, err := chain.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}

func TestChain_AllFail(t *testing.T) {
	chain := Chain{
		staticProvider{err: errors.New("env missing")},
		staticProvider{err: errors.New("file missing")},
	}

	token, err := chain.GetToken()
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Contains(t, err.Error(), "env missing")
	assert.Contains(t, err.Error(), "file missing")
}

func TestGetToken_FromEnv(t *testing.T) {
	t.Setenv(TokenEnvVar, "env_token")

	token, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, "env_token", token)
}

func TestGetToken_BothFail(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	t.Setenv("HOME", t.TempDir())

	token, err := GetToken()
	require.Error(t, err)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Contains(t, err.Error(), TokenEnvVar)
}

func TestTokenProvider_Interface(t *testing.T) {
	var _ TokenProvider = &EnvProvider{}
	var _ TokenProvider = &FileProvider{}
	var _ TokenProvider = Chain{}
}
