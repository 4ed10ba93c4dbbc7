package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Temutjin2k/ride-tracker/internal/domain/types"
	"github.com/Temutjin2k/ride-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/ride-tracker/pkg/logger/wrapper"
)

// Credentials identify the driver to the backend.
type Credentials struct {
	AccessToken string
	DriverID    string
	ExpiresAt   time.Time
}

// Checker inspects the access token locally before any backend call is made.
// The signature is verified by the backend, not here.
type Checker struct {
	parser *jwt.Parser
	now    func() time.Time
	log    logger.Logger
}

func NewChecker(log logger.Logger) *Checker {
	return &Checker{
		parser: jwt.NewParser(),
		now:    time.Now,
		log:    log,
	}
}

// Check validates the token shape and expiry and resolves the driver id.
// The configured driver id wins; otherwise it is taken from the driver_id, user_id or sub claim.
func (c *Checker) Check(ctx context.Context, token, driverID string) (Credentials, error) {
	const op = "Checker.Check"
	ctx = wrap.WithAction(ctx, types.ActionCheckCredential)

	if token == "" {
		return Credentials{}, wrap.Error(ctx, fmt.Errorf("%s: %w: access token is missing", op, types.ErrAuthentication))
	}

	claims := jwt.MapClaims{}
	if _, _, err := c.parser.ParseUnverified(token, claims); err != nil {
		return Credentials{}, wrap.Error(ctx, fmt.Errorf("%s: %w: malformed access token: %v", op, types.ErrAuthentication, err))
	}

	creds := Credentials{AccessToken: token, DriverID: driverID}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Credentials{}, wrap.Error(ctx, fmt.Errorf("%s: %w: invalid exp claim: %v", op, types.ErrAuthentication, err))
	}
	if exp != nil {
		if !exp.After(c.now()) {
			return Credentials{}, wrap.Error(ctx, fmt.Errorf("%s: %w: access token expired at %s", op, types.ErrAuthentication, exp.Format(time.RFC3339)))
		}
		creds.ExpiresAt = exp.Time
	}

	if creds.DriverID == "" {
		creds.DriverID = subject(claims)
	}
	if creds.DriverID == "" {
		return Credentials{}, wrap.Error(ctx, fmt.Errorf("%s: %w: driver id is unknown", op, types.ErrAuthentication))
	}

	c.log.Debug(wrap.WithDriverID(ctx, creds.DriverID), "credentials accepted", "expires_at", creds.ExpiresAt)
	return creds, nil
}

func subject(claims jwt.MapClaims) string {
	for _, key := range []string{"driver_id", "user_id"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	sub, _ := claims.GetSubject()
	return sub
}
