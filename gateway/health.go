package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadyCheck is one dependency probe behind the readiness endpoint.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
	// Optional checks are reported in the response but never flip
	// readiness, for dependencies the service can run without.
	Optional bool
}

// Readyz reports whether a run triggered right now could actually succeed,
// by probing every registered dependency.
func Readyz(checks []ReadyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		results := gin.H{}
		healthy := true
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				results[check.Name] = err.Error()
				if !check.Optional {
					healthy = false
				}
				continue
			}
			results[check.Name] = "ok"
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ready": healthy, "checks": results})
	}
}
