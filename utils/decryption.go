package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/goccy/go-json"
)

const kmsKeyPrefix = "arn:aws:kms:"

// Keyring decrypts source config sections. A key starting with arn:aws:kms:
// is used through AWS KMS; any other key derives a local AES-GCM key.
type Keyring struct {
	kmsClient *kms.Client
	localKey  []byte
}

// NewKeyring returns nil for a blank key, meaning configs are read as plain text.
func NewKeyring(ctx context.Context, key string) (*Keyring, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}

	if strings.HasPrefix(key, kmsKeyPrefix) {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return &Keyring{kmsClient: kms.NewFromConfig(cfg)}, nil
	}

	hash := sha256.Sum256([]byte(key))
	return &Keyring{localKey: hash[:]}, nil
}

// DecryptConfig decodes a base64 (URL alphabet) ciphertext, optionally JSON
// quoted, and returns the plain text.
func (k *Keyring) DecryptConfig(ctx context.Context, encrypted string) (string, error) {
	if k == nil {
		return encrypted, nil
	}

	var unquoted string
	if err := json.Unmarshal([]byte(encrypted), &unquoted); err != nil {
		unquoted = encrypted
	}

	data, err := base64.URLEncoding.DecodeString(unquoted)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 data: %s", err)
	}

	if k.kmsClient != nil {
		out, err := k.kmsClient.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: data})
		if err != nil {
			return "", fmt.Errorf("kms decryption failed: %w", err)
		}
		return string(out.Plaintext), nil
	}

	aead, err := k.aead()
	if err != nil {
		return "", err
	}
	nonceSize := aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}
	plain, err := aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plain), nil
}

// EncryptConfig is the inverse of DecryptConfig for local keys.
func (k *Keyring) EncryptConfig(plain string) (string, error) {
	if k == nil {
		return plain, nil
	}
	if k.kmsClient != nil {
		return "", errors.New("encryption with a KMS key is done through AWS")
	}

	aead, err := k.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

func (k *Keyring) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(k.localKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
