package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rail_distance/internal/distance"
)

// Health handles GET /healthz. The service is "degraded" while no tariff
// registry is loaded; geographic estimates still work then.
func Health(catalog *distance.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{"status": "ok"}
		if reg := catalog.Registry(); reg != nil {
			resp["tariff"] = reg.Stats()
		} else {
			resp["status"] = "degraded"
		}
		if g := catalog.Graph(); g != nil {
			resp["graph"] = distance.GraphStats{Nodes: g.Nodes(), Edges: g.Edges()}
		}
		c.JSON(http.StatusOK, resp)
	}
}
