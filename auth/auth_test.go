package auth

import (
	"chat-relay/errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MyVeryS3cure!Password"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Negative comparison (wrong password)
	match, err = ComparePassword("WrongPassword1!", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "ComplexPass123!"}, false},
		{"Invalid email", RegisterRequest{"notanemail", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"test@example.com", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "nouppercase123!"}, true},
		{"Password too long (edge case)", RegisterRequest{"test@example.com", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret-for-unit-tests", time.Hour)

	signed, err := tokens.Generate("user-42", []string{"user"})
	req.NoError(err)
	req.NotEmpty(signed)

	claims, err := tokens.Validate(signed)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal([]string{"user"}, claims.Roles)

	userID, err := tokens.VerifyCredential(signed)
	req.NoError(err)
	req.Equal("user-42", userID.String())
}

func TestVerifyCredential_Rejections(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret-for-unit-tests", time.Hour)

	t.Run("empty credential", func(t *testing.T) {
		_, err := tokens.VerifyCredential("")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("garbage credential", func(t *testing.T) {
		_, err := tokens.VerifyCredential("not-a-jwt")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived := NewTokenManager("test-secret-for-unit-tests", -time.Minute)
		signed, err := shortLived.Generate("user-42", []string{"user"})
		req.NoError(err)

		_, err = shortLived.VerifyCredential(signed)
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewTokenManager("a-different-secret-entirely", time.Hour)
		signed, err := other.Generate("user-42", []string{"user"})
		req.NoError(err)

		_, err = tokens.VerifyCredential(signed)
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

// BenchmarkHashPassword measures the CPU/RAM impact of Argon2id hashing.
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
