package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), []string{"--store", "memory"})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 1, cfg.LDFlag_SoftDeleteCascadeDepth)
	assert.Equal(t, 2, cfg.LDFlag_HardDeleteCascadeDepth)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, "admin", cfg.DefaultActor)
	assert.Nil(t, cfg.RSAPublicKey)
	assert.Zero(t, cfg.PurgeRetention)
}

func TestLoad_EnvironmentAndFlagPrecedence(t *testing.T) {
	t.Setenv("BM_STORE", "memory")
	t.Setenv("BM_APP_PORT", "9000")
	t.Setenv("BM_PURGE_RETENTION", "720h")

	cfg, err := Load(viper.New(), []string{"--app-port", "9100"})
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "9100", cfg.AppPort, "an explicit flag wins over the environment")
	assert.Equal(t, 720*time.Hour, cfg.PurgeRetention)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: memory\nsoft-delete-cascade-depth: 2\nenable-read-cache: true\n"), 0o600))

	cfg, err := Load(viper.New(), []string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.LDFlag_SoftDeleteCascadeDepth)
	assert.True(t, cfg.LDFlag_EnableReadCache)
}

func TestLoad_PublicKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	cfg, err := Load(viper.New(), []string{"--store", "memory", "--rsa-public-key-base64", base64.StdEncoding.EncodeToString(pemBytes)})
	require.NoError(t, err)
	require.NotNil(t, cfg.RSAPublicKey)
	assert.True(t, key.PublicKey.Equal(cfg.RSAPublicKey))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"postgres without url", nil},
		{"unknown store", []string{"--store", "sqlite"}},
		{"negative depth", []string{"--store", "memory", "--soft-delete-cascade-depth=-1"}},
		{"bad key", []string{"--store", "memory", "--rsa-public-key-base64", "not base64!"}},
		{"unknown flag", []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(viper.New(), tt.args)
			assert.Error(t, err)
		})
	}
}

type fakeFlags struct {
	ints   map[string]int
	bools  map[string]bool
	err    error
	closed bool
}

func (f *fakeFlags) BoolVariation(key string, _ ldcontext.Context, def bool) (bool, error) {
	if v, ok := f.bools[key]; ok {
		return v, f.err
	}
	return def, f.err
}

func (f *fakeFlags) IntVariation(key string, _ ldcontext.Context, def int) (int, error) {
	if v, ok := f.ints[key]; ok {
		return v, f.err
	}
	return def, f.err
}

func (f *fakeFlags) Close() error {
	f.closed = true
	return nil
}

func TestApplyFlags(t *testing.T) {
	cfg := &Config{LDFlag_SoftDeleteCascadeDepth: 1, LDFlag_HardDeleteCascadeDepth: 2}
	src := &fakeFlags{
		ints:  map[string]int{"soft_delete_cascade_depth": 2},
		bools: map[string]bool{"cors_high_security": true},
	}

	require.NoError(t, applyFlags(cfg, src))
	assert.Equal(t, 2, cfg.LDFlag_SoftDeleteCascadeDepth)
	assert.Equal(t, 2, cfg.LDFlag_HardDeleteCascadeDepth, "unset flags keep the local value")
	assert.True(t, cfg.LDFlag_CORSHighSecurity)
	assert.False(t, cfg.LDFlag_EnableReadCache)
	assert.True(t, src.closed)
}

func TestApplyFlags_ErrorKeepsConfig(t *testing.T) {
	cfg := &Config{LDFlag_SoftDeleteCascadeDepth: 1}
	src := &fakeFlags{ints: map[string]int{"soft_delete_cascade_depth": 3}, err: errors.New("offline")}

	assert.Error(t, applyFlags(cfg, src))
	assert.Equal(t, 1, cfg.LDFlag_SoftDeleteCascadeDepth)
	assert.True(t, src.closed)
}
