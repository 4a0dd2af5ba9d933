// middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/jwk"

	"github.com/HSouheill/booking_notifier/models"
)

// Trigger authentication modes, mirrored from config
const (
	AuthModeNone = "none"
	AuthModeHMAC = "hmac"
	AuthModeOIDC = "oidc"
)

var googleIssuers = map[string]bool{
	"https://accounts.google.com": true,
	"accounts.google.com":         true,
}

// TriggerAuthConfig selects how event deliveries are authenticated.
type TriggerAuthConfig struct {
	Mode     string
	Secret   string // hmac: shared signing secret
	Audience string // expected aud claim; required for oidc
	CertsURL string // oidc: JWKS endpoint of the token issuer
}

// TriggerAuthenticator checks the bearer token on incoming trigger requests.
// In oidc mode the token is a Google-signed ID token minted for the push
// subscription; in hmac mode it is an HS256 token signed with a shared secret.
type TriggerAuthenticator struct {
	cfg    TriggerAuthConfig
	keys   *keySetCache
	logger *log.Logger
}

func NewTriggerAuthenticator(cfg TriggerAuthConfig) *TriggerAuthenticator {
	a := &TriggerAuthenticator{
		cfg:    cfg,
		logger: log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
	if cfg.Mode == AuthModeOIDC {
		a.keys = &keySetCache{url: cfg.CertsURL, ttl: time.Hour}
	}
	return a
}

// Middleware rejects requests without a valid bearer token with 401.
func (a *TriggerAuthenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if a.cfg.Mode == "" || a.cfg.Mode == AuthModeNone {
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if authHeader == "" || tokenString == authHeader {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Missing bearer token",
				})
			}

			if err := a.verify(c.Request().Context(), tokenString); err != nil {
				a.logger.Printf("Rejected trigger request from %s: %v", c.RealIP(), err)
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or expired token",
				})
			}
			return next(c)
		}
	}
}

func (a *TriggerAuthenticator) verify(ctx context.Context, tokenString string) error {
	var keyFunc jwt.Keyfunc
	switch a.cfg.Mode {
	case AuthModeHMAC:
		keyFunc = func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(a.cfg.Secret), nil
		}
	case AuthModeOIDC:
		keyFunc = func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no kid")
			}
			return a.keys.publicKey(ctx, kid)
		}
	default:
		return fmt.Errorf("unknown trigger auth mode %q", a.cfg.Mode)
	}

	token, err := jwt.Parse(tokenString, keyFunc)
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("failed to parse token claims")
	}
	// jwt.Parse only checks exp when present.
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return errors.New("token has no valid expiry")
	}
	if a.cfg.Mode == AuthModeOIDC {
		iss, _ := claims["iss"].(string)
		if !googleIssuers[iss] {
			return fmt.Errorf("unexpected issuer %q", iss)
		}
	}
	if a.cfg.Audience != "" && !hasAudience(claims, a.cfg.Audience) {
		return fmt.Errorf("token audience does not match %q", a.cfg.Audience)
	}
	return nil
}

func hasAudience(claims jwt.MapClaims, want string) bool {
	switch aud := claims["aud"].(type) {
	case string:
		return aud == want
	case []interface{}:
		for _, v := range aud {
			if s, _ := v.(string); s == want {
				return true
			}
		}
	}
	return false
}

// keySetCache keeps the issuer's JWKS and refetches it when it expires or
// when a token references an unknown key id.
type keySetCache struct {
	url       string
	ttl       time.Duration
	mu        sync.Mutex
	set       jwk.Set
	fetchedAt time.Time
}

func (k *keySetCache) publicKey(ctx context.Context, kid string) (interface{}, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.set == nil || time.Since(k.fetchedAt) > k.ttl {
		if err := k.refresh(ctx); err != nil {
			return nil, err
		}
	}

	key, found := k.set.LookupKeyID(kid)
	if !found {
		// keys rotate; try once more with a fresh set
		if err := k.refresh(ctx); err != nil {
			return nil, err
		}
		if key, found = k.set.LookupKeyID(kid); !found {
			return nil, fmt.Errorf("public key not found for kid: %s", kid)
		}
	}

	var pubkey interface{}
	if err := key.Raw(&pubkey); err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pubkey, nil
}

func (k *keySetCache) refresh(ctx context.Context) error {
	set, err := jwk.Fetch(ctx, k.url)
	if err != nil {
		return fmt.Errorf("failed to fetch public keys: %w", err)
	}
	k.set = set
	k.fetchedAt = time.Now()
	return nil
}
