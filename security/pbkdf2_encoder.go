package security

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

type PBKDF2Encoder struct {
	Secret    string
	Iteration int
	KeyLength int
}

func NewPBKDF2Encoder(secret string, iteration, keyLength int) *PBKDF2Encoder {
	return &PBKDF2Encoder{Secret: secret, Iteration: iteration, KeyLength: keyLength}
}

func (p PBKDF2Encoder) GetPasswordHash(password string) (string, error) {
	hash := pbkdf2.Key([]byte(password), []byte(p.Secret), p.Iteration, p.KeyLength, sha512.New)
	return base64.StdEncoding.EncodeToString(hash), nil
}

func (p PBKDF2Encoder) IsMatching(hash, password string) bool {
	encoded, _ := p.GetPasswordHash(password)
	return subtle.ConstantTimeCompare([]byte(encoded), []byte(hash)) == 1
}
