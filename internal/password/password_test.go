package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// cheap parameters keep the suite fast
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(testParams)

	encoded, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	if strings.Contains(encoded, "secret") {
		t.Fatalf("hash leaks the plain password")
	}
	if err := h.Verify("secret", encoded); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := h.Verify("wrong", encoded); !errors.Is(err, ErrMismatch) {
		t.Fatalf("Verify wrong password = %v, want ErrMismatch", err)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(testParams)
	a, _ := h.Hash("secret")
	b, _ := h.Hash("secret")
	if a == b {
		t.Fatalf("two hashes of the same password should differ")
	}
}

func TestVerifyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	h := NewHasher(testParams)
	if err := h.Verify("secret", string(legacy)); err != nil {
		t.Fatalf("Verify bcrypt: %v", err)
	}
	if err := h.Verify("nope", string(legacy)); !errors.Is(err, ErrMismatch) {
		t.Fatalf("Verify bcrypt mismatch = %v", err)
	}
	if !h.NeedsRehash(string(legacy)) {
		t.Fatalf("bcrypt hashes should be flagged for rehash")
	}
}

func TestVerifyUnknownFormat(t *testing.T) {
	h := NewHasher(testParams)
	if err := h.Verify("secret", "plaintext"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Verify = %v, want ErrUnknownFormat", err)
	}
}

func TestNeedsRehashOnParamChange(t *testing.T) {
	old := NewHasher(testParams)
	encoded, _ := old.Hash("secret")

	if old.NeedsRehash(encoded) {
		t.Fatalf("hash with current params should not need rehash")
	}
	stronger := testParams
	stronger.Iterations = 2
	if !NewHasher(stronger).NeedsRehash(encoded) {
		t.Fatalf("hash with weaker params should need rehash")
	}
}

func TestVerifyRejectsMalformedArgon2Params(t *testing.T) {
	h := NewHasher(testParams)
	good, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	parts := strings.Split(good, "$")
	salt, key := parts[4], parts[5]

	tests := []struct {
		name    string
		encoded string
	}{
		{"zero iterations", "$argon2id$v=19$m=1024,t=0,p=1$" + salt + "$" + key},
		{"zero parallelism", "$argon2id$v=19$m=1024,t=1,p=0$" + salt + "$" + key},
		{"zero memory", "$argon2id$v=19$m=0,t=1,p=1$" + salt + "$" + key},
		{"huge memory", "$argon2id$v=19$m=4294967295,t=1,p=1$" + salt + "$" + key},
		{"huge iterations", "$argon2id$v=19$m=1024,t=100000,p=1$" + salt + "$" + key},
		{"empty key", "$argon2id$v=19$m=1024,t=1,p=1$" + salt + "$"},
		{"empty salt", "$argon2id$v=19$m=1024,t=1,p=1$$" + key},
		{"wrong version", "$argon2id$v=16$m=1024,t=1,p=1$" + salt + "$" + key},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.Verify("secret", tt.encoded); !errors.Is(err, ErrUnknownFormat) {
				t.Fatalf("Verify = %v, want ErrUnknownFormat", err)
			}
			if !h.NeedsRehash(tt.encoded) {
				t.Fatalf("malformed hash should need a rehash")
			}
		})
	}
}
