package credentials

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
	yaml "gopkg.in/yaml.v3"
)

// scrypt parameters per the package's recommended interactive-login cost.
const (
	scryptN  = 1 << 15
	scryptR  = 8
	scryptP  = 1
	keyLen   = 32
	saltLen  = 16
	nonceLen = 24
)

// sealedBox is the at-rest form of a passphrase-sealed token pair.
type sealedBox struct {
	Salt       []byte `yaml:"salt"`
	Nonce      []byte `yaml:"nonce"`
	Ciphertext []byte `yaml:"ciphertext"`
}

func deriveKey(passphrase string, salt []byte) (*[keyLen]byte, error) {
	raw, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, errors.Wrap(err, "scrypt")
	}
	var key [keyLen]byte
	copy(key[:], raw)
	return &key, nil
}

func seal(pair *TokenPair, passphrase string) (*sealedBox, error) {
	plaintext, err := yaml.Marshal(pair)
	if err != nil {
		return nil, errors.Wrap(err, "marshal pair")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "generate salt")
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generate nonce")
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	return &sealedBox{
		Salt:       salt,
		Nonce:      nonce[:],
		Ciphertext: secretbox.Seal(nil, plaintext, &nonce, key),
	}, nil
}

func (b *sealedBox) open(passphrase string) (*TokenPair, error) {
	if len(b.Nonce) != nonceLen {
		return nil, errors.Errorf("malformed nonce length %d", len(b.Nonce))
	}
	key, err := deriveKey(passphrase, b.Salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceLen]byte
	copy(nonce[:], b.Nonce)

	plaintext, ok := secretbox.Open(nil, b.Ciphertext, &nonce, key)
	if !ok {
		return nil, errors.New("passphrase does not match")
	}

	pair := TokenPair{}
	if err := yaml.Unmarshal(plaintext, &pair); err != nil {
		return nil, errors.Wrap(err, "unmarshal pair")
	}
	return &pair, nil
}
