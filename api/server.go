package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Server serves HTTP requests for the portfolio simulation engine.
type Server struct {
	keyHash    string
	router     *gin.Engine
	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

// NewServer creates a new HTTP server and sets up routing. keyHash is the
// bcrypt hash of the accepted API key; empty disables authentication (local
// runs and tests).
func NewServer(keyHash string) *Server {
	server := &Server{keyHash: keyHash, limiters: make(map[string]*rate.Limiter)}
	server.setupRouter()
	return server
}

func (server *Server) setupRouter() {
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.String(200, "simulation engine is running")
	})

	routes := router.Group("/v1")
	if server.keyHash != "" {
		routes.Use(server.authentication)
	}
	routes.Use(server.throttle)
	routes.POST("/simulate", server.simulate)
	server.router = router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
