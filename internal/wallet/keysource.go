package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeySource produces the private key a wallet signs with.
type KeySource interface {
	Load(ctx context.Context) (*ecdsa.PrivateKey, error)
}

type hexKey string

// HexKey returns a source backed by a raw hex private key, with or without 0x prefix.
func HexKey(key string) KeySource {
	return hexKey(key)
}

func (h hexKey) Load(context.Context) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(string(h), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

type keystoreFile struct {
	path       string
	passphrase string
}

// KeystoreFile returns a source backed by an encrypted JSON keystore file.
func KeystoreFile(path, passphrase string) KeySource {
	return keystoreFile{path: path, passphrase: passphrase}
}

func (k keystoreFile) Load(ctx context.Context) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	// scrypt takes a noticeable amount of time; honour cancellation before starting it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(data, k.passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore %s: %w", k.path, err)
	}
	return key.PrivateKey, nil
}
