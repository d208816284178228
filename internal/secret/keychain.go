package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const keychainService = "diagnote-export"

// KeychainStore implements SecretStore with the macOS Keychain through the
// `security` CLI.
type KeychainStore struct {
	command string
}

// NewKeychainStore creates a new KeychainStore.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{command: "security"}
}

// Available reports whether the keychain CLI can be used on this machine.
func (k *KeychainStore) Available() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath(k.command)
	return err == nil
}

// Set stores a secret, replacing an existing entry.
func (k *KeychainStore) Set(key string, value []byte) error {
	k.Delete(key)

	cmd := exec.Command(k.command, "add-generic-password",
		"-a", key,
		"-s", keychainService,
		"-w", string(value),
		"-U",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("keychain set: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get retrieves a secret. A missing item is not an error.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	cmd := exec.Command(k.command, "find-generic-password",
		"-a", key,
		"-s", keychainService,
		"-w",
	)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		// 44: item not found
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 44 {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get: %w", err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// Delete removes a secret. Missing items are ignored.
func (k *KeychainStore) Delete(key string) error {
	cmd := exec.Command(k.command, "delete-generic-password",
		"-a", key,
		"-s", keychainService,
	)
	cmd.Run()
	return nil
}

// Default returns the keychain when available, otherwise an in-memory store.
func Default() SecretStore {
	if k := NewKeychainStore(); k.Available() {
		return k
	}
	return NewMemoryStore()
}
