package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var defaultParams = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

var errMalformedHash = errors.New("malformed password hash")

func HashPassword(password string) ([]byte, error) {
	return HashPasswordWithParams(password, defaultParams)
}

func HashPasswordWithParams(password string, params Argon2Params) ([]byte, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)

	encoded := base64.StdEncoding.EncodeToString(hash)
	encodedSalt := base64.StdEncoding.EncodeToString(salt)

	result := fmt.Sprintf("$argon2id$v=19$t=%d,m=%d,p=%d$%s$%s",
		params.Time, params.Memory, params.Threads, encodedSalt, encoded)

	return []byte(result), nil
}

func VerifyPassword(password string, encodedHash []byte) (bool, error) {
	parts := strings.Split(string(encodedHash), "$")
	// "", "argon2id", "v=19", "t=..,m=..,p=..", salt, hash
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false, errMalformedHash
	}

	var (
		time    uint32
		memory  uint32
		threads uint8
	)
	if _, err := fmt.Sscanf(parts[3], "t=%d,m=%d,p=%d", &time, &memory, &threads); err != nil {
		return false, fmt.Errorf("parse hash params: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.StdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}
