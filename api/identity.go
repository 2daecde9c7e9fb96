package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/diantamela/satgas-ppk/config"
	"github.com/diantamela/satgas-ppk/models"
)

// tokenCacheTTL bounds how long a verified token skips signature checks
const tokenCacheTTL = 5 * time.Minute

// expiryExtension holds the token's exp as unix seconds, so cached entries still expire
const expiryExtension = "exp"

// Claims is the bearer token payload. The subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity resolves the calling actor from HS256 bearer tokens
type Identity struct {
	secret        []byte
	ttl           time.Duration
	authenticator auth.Authenticator
	now           func() time.Time
}

// NewIdentity sets up the go-guardian bearer strategy over JWT verification
func NewIdentity(secret string, ttl time.Duration) *Identity {
	id := &Identity{secret: []byte(secret), ttl: ttl, now: time.Now}
	cache := store.NewFIFO(context.Background(), tokenCacheTTL)
	id.authenticator = auth.New()
	id.authenticator.EnableStrategy(bearer.CachedStrategyKey, bearer.New(id.verify, cache))
	return id
}

// IssueToken signs a token for actor, valid for the configured ttl
func (id *Identity) IssueToken(actor models.Actor, now time.Time) (string, error) {
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(id.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(id.secret)
}

func (id *Identity) verify(_ context.Context, _ *http.Request, raw string) (auth.Info, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return id.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return nil, errors.Errorf("unknown role %q", claims.Role)
	}
	var exts map[string][]string
	if claims.ExpiresAt != nil {
		exts = map[string][]string{expiryExtension: {strconv.FormatInt(claims.ExpiresAt.Unix(), 10)}}
	}
	return auth.NewDefaultUser(claims.Subject, claims.Subject, []string{string(role)}, exts), nil
}

// expired reports whether the exp recorded at verification has passed
func expired(info auth.Info, now time.Time) bool {
	raw := info.Extensions()[expiryExtension]
	if len(raw) == 0 {
		return false
	}
	exp, err := strconv.ParseInt(raw[0], 10, 64)
	if err != nil {
		return true
	}
	return !now.Before(time.Unix(exp, 0))
}

// Middleware rejects requests without a valid bearer token and puts the actor in the
// request context
func (id *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := id.authenticator.Authenticate(r)
		if err == nil && expired(info, id.now()) {
			err = errors.New("token is expired")
		}
		if err != nil {
			zap.S().Debugw("unauthorized", "url", r.URL.Path, "error", err)
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		actor := models.Actor{ID: info.ID()}
		if groups := info.Groups(); len(groups) > 0 {
			actor.Role, _ = models.ParseRole(groups[0])
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, or the zero Actor
func ActorFromContext(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey{}).(models.Actor)
	return actor
}
