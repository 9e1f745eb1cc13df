package startup

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// SignatureSuffix is appended to a script path to find its detached
// signature.
const SignatureSuffix = ".asc"

// ErrEmptyKeyring is returned when a keyring file holds no keys.
var ErrEmptyKeyring = errors.New("keyring is empty")

// VerificationError reports a startup script whose signature could not be
// verified.
type VerificationError struct {
	Path string
	Err  error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("refusing to run startup script %s: %v", e.Path, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Verify checks the detached signature at sigPath (armored or binary) for
// the file at path against the keyring at keyringPath.
func Verify(path, sigPath, keyringPath string) error {
	keyring, err := loadKeyring(keyringPath)
	if err != nil {
		return &VerificationError{Path: path, Err: err}
	}

	signed, err := os.ReadFile(path)
	if err != nil {
		return &VerificationError{Path: path, Err: fmt.Errorf("read script: %w", err)}
	}
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return &VerificationError{Path: path, Err: fmt.Errorf("read signature: %w", err)}
	}

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, bytes.NewReader(signed), bytes.NewReader(sig), nil)
	if err != nil {
		_, err = openpgp.CheckDetachedSignature(keyring, bytes.NewReader(signed), bytes.NewReader(sig), nil)
	}
	if err != nil {
		return &VerificationError{Path: path, Err: fmt.Errorf("verify signature: %w", err)}
	}
	return nil
}

// loadKeyring reads an armored or binary OpenPGP keyring.
func loadKeyring(path string) (openpgp.EntityList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}

	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, ErrEmptyKeyring
	}
	return keyring, nil
}
