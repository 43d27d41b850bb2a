package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
)

// Argon2id parameters, following the OWASP minimum recommendation.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepper     string
	pepperFile string
)

// SetPepperPath configures the file the pepper is loaded from. Call before
// the first HashPassword or VerifyPassword.
func SetPepperPath(file string) {
	pepperFile = file
}

// GetPepper returns the process-wide pepper, loading or generating it on
// first use. A missing pepper is unrecoverable so failure exits.
func GetPepper() string {
	if pepper != "" {
		return pepper
	}

	var err error
	pepper, err = loadOrGeneratePepper()
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	return pepper
}

func loadOrGeneratePepper() (string, error) {
	pepperFile = filepath.Clean(pepperFile)
	if err := os.MkdirAll(filepath.Dir(pepperFile), 0750); err != nil {
		return "", err
	}

	data, err := os.ReadFile(pepperFile)
	if err == nil {
		return string(data), nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	// First run on this host, mint a fresh pepper and persist it.
	raw := make([]byte, keyLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	generated := base64.RawURLEncoding.EncodeToString(raw)

	if err := os.WriteFile(pepperFile, []byte(generated), 0600); err != nil {
		return "", err
	}
	return generated, nil
}

// ReloadPepper re-reads the pepper from disk, for use after a backup
// restore has replaced the file.
func ReloadPepper() error {
	loaded, err := loadOrGeneratePepper()
	if err != nil {
		slog.Error("failed to reload pepper", slog.Any("err", err))
		return err
	}
	pepper = loaded
	return nil
}
