// Package auth resolves the authenticated principal of a request and
// verifies identity-provider webhooks.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/util"
)

// ErrUnauthenticated is returned when a request carries no usable identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the authenticated user of a request.
type Principal struct {
	UserID     string
	ExternalID string
}

// Resolver extracts the identity provider's subject id from a request.
type Resolver interface {
	Subject(r *http.Request) (string, error)
}

// HeaderResolver trusts a header set by an authenticating proxy.
type HeaderResolver struct {
	Header string
}

// VaryHeader names the request header the resolved identity depends on.
func (h HeaderResolver) VaryHeader() string { return h.Header }

func (h HeaderResolver) Subject(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get(h.Header))
	if s == "" {
		return "", ErrUnauthenticated
	}
	return s, nil
}

// UserLookup maps a subject id to a stored user.
type UserLookup interface {
	GetUserByExternalID(ctx context.Context, externalID string) (*store.User, error)
}

type ctxKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored by Middleware, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// ViewerID returns the principal's user id, or "" for anonymous requests.
func ViewerID(ctx context.Context) string {
	p, _ := FromContext(ctx)
	return p.UserID
}

// Middleware attaches the principal to the request context. With required
// set, requests without a known principal are answered with 401; otherwise
// they continue anonymously. Responses carry a Vary on the identity header,
// and responses to an authenticated principal are marked private.
func Middleware(res Resolver, users UserLookup, required bool) func(http.Handler) http.Handler {
	varyOn := ""
	if v, ok := res.(interface{ VaryHeader() string }); ok {
		varyOn = v.VaryHeader()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if varyOn != "" {
				w.Header().Add("Vary", varyOn)
			}
			p, err := resolve(r, res, users)
			switch {
			case err == nil:
				w.Header().Set("Cache-Control", "private")
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
			case errors.Is(err, ErrUnauthenticated):
				if required {
					util.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
					return
				}
				next.ServeHTTP(w, r)
			default:
				util.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
			}
		})
	}
}

func resolve(r *http.Request, res Resolver, users UserLookup) (Principal, error) {
	sub, err := res.Subject(r)
	if err != nil {
		return Principal{}, err
	}
	u, err := users.GetUserByExternalID(r.Context(), sub)
	if errors.Is(err, store.ErrNotFound) {
		return Principal{}, ErrUnauthenticated
	}
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: u.ID, ExternalID: sub}, nil
}

// WebhookVerifier authenticates identity-provider webhook deliveries.
type WebhookVerifier interface {
	Verify(r *http.Request, body []byte) error
}

// WebhookSecretHeader carries the shared secret on webhook deliveries.
const WebhookSecretHeader = "X-Webhook-Secret"

// SharedSecretVerifier compares WebhookSecretHeader against a configured
// secret. An empty secret rejects every delivery.
type SharedSecretVerifier struct {
	Secret string
}

func (v SharedSecretVerifier) Verify(r *http.Request, _ []byte) error {
	got := r.Header.Get(WebhookSecretHeader)
	if v.Secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(v.Secret)) != 1 {
		return ErrUnauthenticated
	}
	return nil
}
