package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	CORSOrigin  string
	StaticDir   string
	SendLimiter *RateLimiter // optional submit throttle, caller owns its Cleanup loop
}

// NewRouter builds the gin engine: API routes under /api, the SSE stream,
// and everything else delegated to static portal assets.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS(opts.CORSOrigin))

	var sendLimiter gin.HandlerFunc
	if opts.SendLimiter != nil {
		sendLimiter = opts.SendLimiter.Middleware()
	}

	api := r.Group("/api")
	h.RegisterRoutes(api, sendLimiter)

	r.GET("/notifications/stream", h.Stream)

	r.NoRoute(staticHandler(opts.StaticDir))
	return r
}

// staticHandler serves the portal pages. Unknown API paths get a JSON 404;
// everything else maps onto the static directory with / as the login page.
func staticHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		if dir == "" {
			c.Status(http.StatusNotFound)
			return
		}
		if path == "/" {
			path = "/login.html"
		}

		full := filepath.Join(dir, filepath.Clean("/"+path))
		if info, err := os.Stat(full); err != nil || info.IsDir() {
			c.Status(http.StatusNotFound)
			return
		}
		c.File(full)
	}
}
