package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rail_distance/internal/distance"
)

// DistanceController serves distance resolutions.
type DistanceController struct {
	svc *distance.Service
}

func NewDistanceController(svc *distance.Service) *DistanceController {
	return &DistanceController{svc: svc}
}

// GetDistance handles GET /distance?from=&to=. Unresolvable pairs are still
// 200 responses; the outcome field says why no distance was found.
func (dc *DistanceController) GetDistance(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	res := dc.svc.Resolve(c.Request.Context(), from, to)
	c.JSON(http.StatusOK, res)
}

// GetRemaining handles GET /distance/remaining?origin=&current=&destination=.
func (dc *DistanceController) GetRemaining(c *gin.Context) {
	var q struct {
		Origin      string `form:"origin"`
		Current     string `form:"current" binding:"required"`
		Destination string `form:"destination" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := dc.svc.Remaining(c.Request.Context(), q.Origin, q.Current, q.Destination)
	c.JSON(http.StatusOK, r)
}
