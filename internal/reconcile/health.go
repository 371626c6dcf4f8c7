package reconcile

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (r *Reconciler) HealthHandler() http.Handler {
	g := gin.New()

	g.Use(gin.Recovery())

	// liveness: process is up
	g.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// readiness flips off during shutdown
	g.GET("/readyz", func(ctx *gin.Context) {
		r.readyMu.RLock()
		ready := r.ready
		lastRun := r.lastRun
		r.readyMu.RUnlock()

		if !ready {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		body := gin.H{"status": "ready"}
		if !lastRun.IsZero() {
			body["lastRun"] = lastRun.UTC()
		}
		ctx.JSON(http.StatusOK, body)
	})

	return g
}
