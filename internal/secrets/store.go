// Package secrets stores API credentials in the system keyring
// (macOS Keychain, Windows Credential Manager, Secret Service on Linux,
// or an encrypted file fallback).
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/99designs/keyring"

	"github.com/plumvelvet/capacities-cli/internal/config"
)

// EnvKeyringBackend selects the keyring backend (auto, keychain, file).
const EnvKeyringBackend = "CAP_KEYRING_BACKEND"

// Credentials holds the stored Capacities credentials for a profile.
type Credentials struct {
	Profile   string    `json:"profile"`
	APIToken  string    `json:"api_token"`
	SpaceID   string    `json:"space_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists credentials per named profile.
type Store interface {
	Set(profile string, creds Credentials) error
	Get(profile string) (Credentials, error)
	Delete(profile string) error
}

// ErrNotFound is returned when no credentials exist for a profile.
var ErrNotFound = errors.New("credentials not found")

// keyringStore is the keyring-backed Store implementation.
type keyringStore struct {
	ring keyring.Keyring
}

// KeyringBackendInfo describes the selected backend and where the selection
// came from.
type KeyringBackendInfo struct {
	Value  string // auto, keychain, file
	Source string // env, config, default
}

// backendInfo resolves the backend selection: env > config > auto.
func backendInfo(getenv func(string) string, cfg *config.Config) KeyringBackendInfo {
	if v := strings.TrimSpace(getenv(EnvKeyringBackend)); v != "" {
		return KeyringBackendInfo{Value: strings.ToLower(v), Source: "env"}
	}
	if cfg != nil && strings.TrimSpace(cfg.KeyringBackend) != "" {
		return KeyringBackendInfo{Value: strings.ToLower(strings.TrimSpace(cfg.KeyringBackend)), Source: "config"}
	}
	return KeyringBackendInfo{Value: "auto", Source: "default"}
}

// shouldForceFileBackend reports whether the file backend must be used even
// though the user asked for auto. On Linux the Secret Service needs a D-Bus
// session; without one the keyring library can hang or fail obscurely.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	if info.Value != "auto" && info.Value != "" {
		return false
	}
	return goos == "linux" && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether opening the keyring should be
// guarded by a timeout. A present but unresponsive D-Bus session can block
// indefinitely.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	if info.Value != "auto" && info.Value != "" {
		return false
	}
	return goos == "linux" && dbusAddr != ""
}

// keyringOpenFunc opens a keyring; replaceable in tests.
var keyringOpenFunc = keyring.Open

// envGetenv reads the process environment; replaceable in tests.
var envGetenv = os.Getenv

// errKeyringTimeout indicates the keyring backend did not respond in time.
var errKeyringTimeout = errors.New("keyring open timed out")

// openKeyringWithTimeout opens the keyring, giving up after the timeout.
func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type result struct {
		ring keyring.Keyring
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		ring, err := keyringOpenFunc(cfg)
		ch <- result{ring: ring, err: err}
	}()

	select {
	case r := <-ch:
		return r.ring, r.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; your desktop keyring may be unresponsive. "+
			"Set %s=file to use the encrypted file backend instead", errKeyringTimeout, timeout, EnvKeyringBackend)
	}
}

// wrapKeychainError adds recovery instructions for a locked macOS keychain.
func wrapKeychainError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "errSecInteractionNotAllowed") || strings.Contains(err.Error(), "-25308") {
		return fmt.Errorf("%w\n\nYour keychain appears to be locked. Unlock it with:\n"+
			"  security unlock-keychain\n"+
			"or open Keychain Access and unlock the login keychain", err)
	}
	return err
}

// Open opens a credential store with an explicit backend selection.
func Open(getenv func(string) string, cfg *config.Config) (Store, error) {
	info := backendInfo(getenv, cfg)

	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}

	krCfg := keyring.Config{
		ServiceName:              config.AppName,
		FileDir:                  keyringDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(""),
		KeychainTrustApplication: true,
	}

	dbusAddr := getenv("DBUS_SESSION_BUS_ADDRESS")
	switch {
	case info.Value == "file" || shouldForceFileBackend(runtime.GOOS, info, dbusAddr):
		krCfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	case info.Value == "keychain":
		krCfg.AllowedBackends = []keyring.BackendType{keyring.KeychainBackend}
	}

	var ring keyring.Keyring
	if shouldUseKeyringTimeout(runtime.GOOS, info, dbusAddr) {
		ring, err = openKeyringWithTimeout(krCfg, 5*time.Second)
	} else {
		ring, err = keyringOpenFunc(krCfg)
	}
	if err != nil {
		return nil, wrapKeychainError(err)
	}

	return &keyringStore{ring: ring}, nil
}

// OpenDefault opens the credential store with default backend selection
// (environment, then config file, then auto).
func OpenDefault() (Store, error) {
	cfg, err := config.ReadConfig()
	if err != nil {
		cfg = &config.Config{}
	}
	return Open(envGetenv, cfg)
}

func (s *keyringStore) Set(profile string, creds Credentials) error {
	creds.Profile = profile
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	err = s.ring.Set(keyring.Item{
		Key:   profile,
		Data:  data,
		Label: config.AppName + " credentials (" + profile + ")",
	})
	if err != nil {
		return wrapKeychainError(err)
	}
	return nil
}

func (s *keyringStore) Get(profile string) (Credentials, error) {
	item, err := s.ring.Get(profile)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Credentials{}, ErrNotFound
		}
		return Credentials{}, wrapKeychainError(err)
	}

	var creds Credentials
	if err := json.Unmarshal(item.Data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parsing stored credentials: %w", err)
	}
	return creds, nil
}

func (s *keyringStore) Delete(profile string) error {
	err := s.ring.Remove(profile)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return ErrNotFound
		}
		return wrapKeychainError(err)
	}
	return nil
}
