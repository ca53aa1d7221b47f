package password

import (
	"strings"
	"testing"
)

// testParams keeps hashing cheap in tests.
var testParams = &Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple", testParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("Hash() = %q, want $argon2id$ prefix", hash)
	}

	ok, err := Verify("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() = false for the correct password")
	}

	ok, err = Verify("wrong password", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Error("Verify() = true for a wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := Hash("same password", testParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := Hash("same password", testParams)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salt not applied")
	}
}

func TestVerifyInvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "not a hash", hash: "plaintext"},
		{name: "wrong algorithm", hash: "$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA"},
		{name: "truncated", hash: "$argon2id$v=19$m=8192,t=1,p=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Verify("anything", tt.hash); err == nil {
				t.Error("Verify() error = nil, want parse error")
			}
		})
	}
}
