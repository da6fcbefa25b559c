package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Options tunes the CORS middleware. Zero values fall back to the portal defaults.
type Options struct {
	AllowedOrigins []string
	AllowedHeaders []string
	ExposedHeaders []string
	AllowedMethods []string
}

var (
	defaultHeaders = []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"}
	defaultExposed = []string{"Content-Disposition", "X-Request-ID"}
	defaultMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
)

// New returns a CORS middleware that honors a list of allowed origins.
// An empty list allows every origin, which matches the single-tenant development setup.
func New(opts Options) gin.HandlerFunc {
	allowAll := len(opts.AllowedOrigins) == 0
	originSet := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}
	headers := strings.Join(orDefault(opts.AllowedHeaders, defaultHeaders), ", ")
	exposed := strings.Join(orDefault(opts.ExposedHeaders, defaultExposed), ", ")
	methods := strings.Join(orDefault(opts.AllowedMethods, defaultMethods), ", ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && (allowAll || allowed(originSet, origin)):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case origin == "" && allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		}

		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Expose-Headers", exposed)
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func allowed(originSet map[string]struct{}, origin string) bool {
	_, ok := originSet[strings.TrimRight(origin, "/")]
	return ok
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
