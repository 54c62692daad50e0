// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("ACCOUNT_EMPTY_PASSWORD").Errorf("password cannot be empty")

// Hasher provides one-way password hashing and verification. The
// concrete algorithm is injected, not hardcoded, so tests can
// substitute a trivial implementation.
//
// Hash produces a self-contained digest string embedding salt and cost
// parameters; it is safe to store directly as a single field.
//
// Verify returns (true, nil) on match and (false, nil) on mismatch. A
// structurally invalid digest fails loudly with an error rather than
// comparing as false: a malformed stored digest means data corruption,
// and hiding it behind "wrong password" would mask the problem.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}

// Argon2idHasher implements Hasher using argon2id in PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id digest of the password with a fresh random salt.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("ACCOUNT_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	digest := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return digest, nil
}

// argon2Params are the cost parameters and material recovered from a
// stored digest.
type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint32
	salt    []byte
	key     []byte
}

// parseArgon2Digest decodes a PHC-formatted argon2id digest.
func parseArgon2Digest(digest string) (argon2Params, error) {
	var p argon2Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return p, oops.Code("ACCOUNT_INVALID_DIGEST").Errorf("invalid digest format")
	}
	if parts[1] != "argon2id" {
		return p, oops.Code("ACCOUNT_INVALID_DIGEST").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
	}
	// Threads must fit in uint8 to prevent silent truncation.
	if p.threads > 255 {
		return p, oops.Code("ACCOUNT_INVALID_DIGEST").Errorf("threads value %d exceeds uint8 max", p.threads)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
	}
	if keyLen := len(p.key); keyLen == 0 || keyLen > 1<<30 {
		return p, oops.Code("ACCOUNT_INVALID_DIGEST").Errorf("invalid digest key length: %d", keyLen)
	}
	return p, nil
}

// Verify recomputes the digest with the parameters embedded in it and
// compares in constant time.
func (h *Argon2idHasher) Verify(password, digest string) (bool, error) {
	p, err := parseArgon2Digest(digest)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, uint8(p.threads), uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}

// AutoHasher hashes new passwords with argon2id and verifies stored
// digests of either supported format, dispatching on the digest
// prefix. Accounts imported with bcrypt digests keep authenticating;
// the digest becomes argon2id on the next password rotation.
type AutoHasher struct {
	argon2id *Argon2idHasher
	bcrypt   *BcryptHasher
}

// NewAutoHasher creates an AutoHasher with default-cost bcrypt
// verification.
func NewAutoHasher() *AutoHasher {
	return &AutoHasher{
		argon2id: NewArgon2idHasher(),
		bcrypt:   NewBcryptHasher(0),
	}
}

// Hash produces an argon2id digest of the password.
func (h *AutoHasher) Hash(password string) (string, error) {
	return h.argon2id.Hash(password)
}

// Verify dispatches on the digest prefix. "$2" marks a bcrypt digest;
// everything else is handed to the argon2id verifier, which fails
// loudly on formats it does not recognize.
func (h *AutoHasher) Verify(password, digest string) (bool, error) {
	if strings.HasPrefix(digest, "$2") {
		return h.bcrypt.Verify(password, digest)
	}
	return h.argon2id.Verify(password, digest)
}

// Compile-time interface checks.
var (
	_ Hasher = (*Argon2idHasher)(nil)
	_ Hasher = (*AutoHasher)(nil)
)
