package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/studyconnect/accounts/pkg/cryptox"
	"github.com/studyconnect/accounts/pkg/jwtx"
)

// InitSigningKeys loads the Ed25519 signing key from disk, generating one on
// first start. The key survives restarts so issued tokens stay valid across
// deploys; delete the file to force a rotation.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*jwtx.Signer, *jwtx.KeySet, error) {
	pemKey, generated, err := loadOrGenerateKey(cfg.SigningKeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	// Kid is the fingerprint of the PEM so a rotated key gets a new kid
	// without any bookkeeping.
	kid := cryptox.FingerprintToken(string(pemKey))[:16]
	signer, err := jwtx.NewSigner(kid, pemKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, err
	}

	if generated {
		logger.Info("generated new signing key",
			"file", cfg.SigningKeyFile,
			"kid", kid,
		)
		logger.Warn("all previously issued tokens are now invalid")
	} else {
		logger.Info("signing key loaded", "kid", kid)
	}

	return signer, keys, nil
}

func loadOrGenerateKey(file string) ([]byte, bool, error) {
	file = filepath.Clean(file)

	if pemKey, err := os.ReadFile(file); err == nil {
		return pemKey, false, nil
	} else if !os.IsNotExist(err) {
		return nil, false, err
	}

	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, false, err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, false, err
	}
	if err := os.WriteFile(file, pemKey, 0600); err != nil {
		return nil, false, err
	}
	return pemKey, true, nil
}
