package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "secret1",
			wantErr:  nil,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  nil,
		},
		{
			name:     "password at bcrypt limit",
			password: strings.Repeat("a", 72),
			wantErr:  nil,
		},
		{
			name:     "password over bcrypt limit",
			password: strings.Repeat("a", 73),
			wantErr:  ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.HashPassword(tt.password)
			if err != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && hash == "" {
				t.Error("HashPassword() returned empty hash for valid password")
			}
		})
	}
}

func TestHasher_HashIsSaltedAndOpaque(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	second, err := h.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password should differ (salt)")
	}
	if strings.Contains(first, "secret1") {
		t.Error("hash must not contain the plaintext")
	}
}

func TestHasher_CostIsApplied(t *testing.T) {
	h := NewHasher(10)

	hash, err := h.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}
	if cost != 10 {
		t.Errorf("cost = %d, want 10", cost)
	}
}

func TestNewHasher_InvalidCostFallsBack(t *testing.T) {
	for _, cost := range []int{0, -1, bcrypt.MaxCost + 1} {
		if got := NewHasher(cost).Cost(); got != bcrypt.DefaultCost {
			t.Errorf("NewHasher(%d).Cost() = %d, want %d", cost, got, bcrypt.DefaultCost)
		}
	}
}

func TestHasher_CheckPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	password := "secret1"
	hash, err := h.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{
			name:     "correct password",
			password: password,
			hash:     hash,
			want:     true,
		},
		{
			name:     "incorrect password",
			password: "secret2",
			hash:     hash,
			want:     false,
		},
		{
			name:     "prefix of password",
			password: "secret",
			hash:     hash,
			want:     false,
		},
		{
			name:     "empty password",
			password: "",
			hash:     hash,
			want:     false,
		},
		{
			name:     "malformed hash",
			password: password,
			hash:     "not-a-bcrypt-hash",
			want:     false,
		},
		{
			name:     "empty hash",
			password: password,
			hash:     "",
			want:     false,
		},
		{
			name:     "truncated hash",
			password: password,
			hash:     hash[:len(hash)-5],
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
