package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowOrigins is a list of origins a cross-domain request can be executed from.
	// If the list contains "*", all origins are allowed.
	// Default: ["*"]
	AllowOrigins []string

	// AllowMethods is a list of methods the client is allowed to use.
	// Default covers the full view-set verb set:
	// ["GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"]
	AllowMethods []string

	// AllowHeaders is a list of headers the client is allowed to use.
	// Default: ["Content-Type", "Authorization"]
	AllowHeaders []string

	// ExposeHeaders indicates which headers are safe to expose.
	// Default: []
	ExposeHeaders []string

	// AllowCredentials indicates whether the request can include credentials.
	// Default: false
	AllowCredentials bool

	// MaxAge indicates how long (in seconds) the results of a preflight request can be cached.
	// Default: 0 (not set)
	MaxAge int
}

// CORSAllowAll is a permissive CORS configuration suitable for development.
var CORSAllowAll *CORSConfig = nil

// CORS returns an HTTP middleware that handles CORS preflight requests and
// sets CORS headers. Wire it with Router.WithMiddleware.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	if cfg == nil {
		cfg = &CORSConfig{}
	}

	allowedOrigins := cfg.AllowOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	allowedMethods := cfg.AllowMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}

	allowedHeaders := cfg.AllowHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"Content-Type", "Authorization"}
	}

	allowedMethodsStr := strings.Join(allowedMethods, ", ")
	allowedHeadersStr := strings.Join(allowedHeaders, ", ")
	exposedHeadersStr := strings.Join(cfg.ExposeHeaders, ", ")
	wildcard := slices.Contains(allowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := wildcard
			if !allowed && origin != "" {
				allowed = slices.Contains(allowedOrigins, origin)
			}

			if allowed {
				// CORS spec forbids Access-Control-Allow-Origin: * together
				// with Access-Control-Allow-Credentials: true, so echo the
				// requesting origin in that case.
				switch {
				case origin != "" && !wildcard:
					w.Header().Set("Access-Control-Allow-Origin", origin)
				case origin != "" && cfg.AllowCredentials:
					w.Header().Set("Access-Control-Allow-Origin", origin)
				default:
					w.Header().Set("Access-Control-Allow-Origin", "*")
				}

				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", allowedMethodsStr)
				w.Header().Set("Access-Control-Allow-Headers", allowedHeadersStr)
				if exposedHeadersStr != "" {
					w.Header().Set("Access-Control-Expose-Headers", exposedHeadersStr)
				}
				if cfg.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
