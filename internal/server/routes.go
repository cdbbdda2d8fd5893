package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() {
	s.router.GET("/health", healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := s.router.Group("/v1")
	{
		v1.POST("/check", s.handleCheck())
		v1.POST("/apply", s.handleApply())
		v1.POST("/apply-all", s.handleApplyAll())
		v1.POST("/render", s.handleRender())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
