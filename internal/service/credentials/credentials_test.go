package credentials

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
)

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newChecker() *Checker {
	return NewChecker(logger.New(io.Discard, "test", logger.LevelError))
}

func TestCheck(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	tests := []struct {
		name     string
		token    string
		driverID string
		wantID   string
		wantErr  bool
	}{
		{"configured id wins", token(t, jwt.MapClaims{"exp": future, "user_id": 99}), "17", "17", false},
		{"user_id claim", token(t, jwt.MapClaims{"exp": future, "user_id": 99}), "", "99", false},
		{"driver_id claim", token(t, jwt.MapClaims{"driver_id": "d-5"}), "", "d-5", false},
		{"sub claim", token(t, jwt.MapClaims{"sub": "42"}), "", "42", false},
		{"expired", token(t, jwt.MapClaims{"exp": past}), "17", "", true},
		{"missing token", "", "17", "", true},
		{"garbage", "not-a-jwt", "17", "", true},
		{"no driver id anywhere", token(t, jwt.MapClaims{"exp": future}), "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := newChecker().Check(context.Background(), tt.token, tt.driverID)
			if tt.wantErr {
				if !errors.Is(err, types.ErrAuthentication) {
					t.Fatalf("expected ErrAuthentication, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if creds.DriverID != tt.wantID {
				t.Fatalf("got driver id %q want %q", creds.DriverID, tt.wantID)
			}
		})
	}
}
