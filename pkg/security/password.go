package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash is returned for strings that are not PHC-encoded argon2id.
var ErrInvalidHash = errors.New("invalid argon2id hash")

var b64 = base64.RawStdEncoding

// argonHash is the decoded form of "$argon2id$v=19$m=..,t=..,p=..$salt$key".
type argonHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func (h argonHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads, b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

func (h argonHash) derive(password string) []byte {
	return argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, uint32(len(h.key)))
}

// HashPassword derives an argon2id key with a random salt. Config values
// outside sane bounds are clamped.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	h := argonHash{
		memory:  uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		time:    uint32(clamp(cfg.ArgonTime, 1, 10)),
		threads: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		salt:    make([]byte, clamp(cfg.ArgonSaltLen, 8, 64)),
		key:     make([]byte, clamp(cfg.ArgonKeyLen, 16, 64)),
	}
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	h.key = h.derive(password)
	return h.String(), nil
}

// VerifyPassword compares in constant time. A malformed hash is an error,
// a wrong password is not.
func VerifyPassword(password, encoded string) (bool, error) {
	h, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(h.key, h.derive(password)) == 1, nil
}

// NeedsRehash is true when encoded is malformed or weaker than cfg asks for.
func NeedsRehash(encoded string, cfg config.PasswordConfig) bool {
	h, err := parseHash(encoded)
	if err != nil {
		return true
	}
	return int(h.memory) < clamp(cfg.ArgonMemoryKB, 8, 512*1024) ||
		int(h.time) < clamp(cfg.ArgonTime, 1, 10) ||
		len(h.key) < clamp(cfg.ArgonKeyLen, 16, 64)
}

func parseHash(encoded string) (argonHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return argonHash{}, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return argonHash{}, ErrInvalidHash
	}

	var h argonHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return argonHash{}, ErrInvalidHash
	}

	var err error
	if h.salt, err = b64.DecodeString(parts[4]); err != nil {
		return argonHash{}, ErrInvalidHash
	}
	if h.key, err = b64.DecodeString(parts[5]); err != nil || len(h.key) == 0 {
		return argonHash{}, ErrInvalidHash
	}
	return h, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
