package server

import (
	"net/http"
	"strings"

	apperrors "github.com/agbru/factcalc/internal/errors"
)

// DefaultMaxN is the largest N the API computes unless configured otherwise.
const DefaultMaxN = 1_000_000

// SecurityConfig controls the headers and input limits applied to every
// request.
type SecurityConfig struct {
	// EnableCORS adds Access-Control-* headers for allowed origins.
	EnableCORS bool
	// AllowedOrigins lists the origins echoed back; "*" allows any origin.
	AllowedOrigins []string
	// AllowedMethods is advertised in Access-Control-Allow-Methods.
	AllowedMethods []string
	// MaxNValue is the largest N accepted by /factorial.
	MaxNValue int64
}

// DefaultSecurityConfig returns a read-only, any-origin configuration.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxNValue:      DefaultMaxN,
	}
}

// ValidateN rejects negative values and values above MaxNValue.
func (c SecurityConfig) ValidateN(n int64) error {
	if n < 0 {
		return apperrors.NewInvalidArgument("n", "must be non-negative (got %d)", n)
	}
	if c.MaxNValue > 0 && n > c.MaxNValue {
		return apperrors.NewInvalidArgument("n", "exceeds the server limit of %d (got %d)", c.MaxNValue, n)
	}
	return nil
}

// SecurityMiddleware sets the standard hardening headers, answers CORS
// preflight requests and otherwise delegates to next.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin, ok := allowedOrigin(config.AllowedOrigins, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
				if origin != "*" {
					h.Add("Vary", "Origin")
				}
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// allowedOrigin returns the value for Access-Control-Allow-Origin. A wildcard
// matches every request, including those without an Origin header.
func allowedOrigin(allowed []string, origin string) (string, bool) {
	for _, a := range allowed {
		if a == "*" {
			return "*", true
		}
		if origin != "" && a == origin {
			return origin, true
		}
	}
	return "", false
}
