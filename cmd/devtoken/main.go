// Command devtoken mints a signed session token for local testing of the
// authenticated routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/richxcame/fraud-registry/pkg/config"
	"github.com/richxcame/fraud-registry/pkg/jwtkeys"
	"github.com/richxcame/fraud-registry/pkg/middleware"
)

func main() {
	email := flag.String("email", "driver@example.com", "identity carried by the token")
	name := flag.String("name", "", "display name (defaults to the email)")
	role := flag.String("role", string(middleware.RoleMember), "member or admin")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_EXPIRATION hours)")
	flag.Parse()

	cfg, err := config.Load("devtoken")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	token, err := mint(jwtkeys.NewStaticProvider(cfg.JWT.Secret), *email, *name, middleware.Role(*role), lifetime(*ttl, cfg.JWT.Expiration), time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func lifetime(ttl time.Duration, expirationHours int) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return time.Duration(expirationHours) * time.Hour
}

func mint(provider jwtkeys.KeyProvider, email, name string, role middleware.Role, ttl time.Duration, now time.Time) (string, error) {
	switch role {
	case middleware.RoleMember, middleware.RoleAdmin:
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
	if email == "" {
		return "", fmt.Errorf("email is required")
	}

	return middleware.SignToken(provider, middleware.Claims{
		UserID: uuid.New(),
		Email:  email,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}
