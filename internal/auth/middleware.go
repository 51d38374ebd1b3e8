// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/shipwatch/internal/logging"
)

// Auth modes.
const (
	ModeNone = "none"
	ModeJWT  = "jwt"
)

// SubscriberHeader carries the subscriber ID when authentication is off.
const SubscriberHeader = "X-Subscriber-ID"

type contextKey string

// ClaimsContextKey holds the validated *Claims in a request context.
const ClaimsContextKey contextKey = "claims"

// Middleware resolves the subscriber identity of each request.
type Middleware struct {
	mode string
	jwt  *JWTManager
}

// NewMiddleware creates the identity middleware. jwtManager is required in
// jwt mode and ignored otherwise.
func NewMiddleware(mode string, jwtManager *JWTManager) *Middleware {
	if mode == "" {
		mode = ModeJWT
	}
	return &Middleware{mode: mode, jwt: jwtManager}
}

// Mode returns the configured auth mode.
func (m *Middleware) Mode() string {
	return m.mode
}

// Authenticate rejects requests without a valid identity with 401 and
// attaches the subscriber ID to the request context otherwise.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subscriberID, claims, err := m.Identify(r)
		if err != nil {
			logging.Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := logging.ContextWithSubscriberID(r.Context(), subscriberID)
		if claims != nil {
			ctx = context.WithValue(ctx, ClaimsContextKey, claims)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identify resolves the subscriber of r without writing a response.
func (m *Middleware) Identify(r *http.Request) (string, *Claims, error) {
	if m.mode == ModeNone {
		id := strings.TrimSpace(r.Header.Get(SubscriberHeader))
		if id == "" {
			id = strings.TrimSpace(r.URL.Query().Get("sub"))
		}
		if id == "" {
			return "", nil, ErrNoCredentials
		}
		return id, nil, nil
	}

	token, err := extractToken(r)
	if err != nil {
		return "", nil, err
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return "", nil, err
	}
	return claims.Subject, claims, nil
}

// extractToken reads the bearer token from the header, the token query
// parameter or the token cookie, in that order.
func extractToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", ErrInvalidCredentials
		}
		return parts[1], nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", ErrNoCredentials
}

// SubscriberID returns the authenticated subscriber of ctx, or "".
func SubscriberID(ctx context.Context) string {
	return logging.SubscriberIDFromContext(ctx)
}

// ClaimsFromContext returns the validated JWT claims of ctx, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}
