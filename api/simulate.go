package api

import (
	"errors"
	"net/http"

	"github.com/banachtech/sleevesim/sim"
	"github.com/gin-gonic/gin"
)

// simulate runs one simulation request end to end. Configuration errors are
// the caller's fault and come back as 400 with no result object; a completed
// run always returns a result, warnings included.
func (server *Server) simulate(c *gin.Context) {
	var cfg sim.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	res, err := sim.Run(c.Request.Context(), cfg)
	if err != nil {
		var ce *sim.ConfigError
		if errors.As(err, &ce) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": "error", "msg": ce.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "result": res})
}
