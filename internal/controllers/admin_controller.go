package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rail_distance/internal/distance"
	"rail_distance/internal/tariff"
)

const maxWarmBatch = 500

// AdminController reloads reference data and warms the coordinate cache.
type AdminController struct {
	catalog *distance.Catalog
	tariffs tariff.Source
	chains  distance.ChainSource
	locator CoordinateLocator
}

func NewAdminController(catalog *distance.Catalog, tariffs tariff.Source, chains distance.ChainSource, locator CoordinateLocator) *AdminController {
	return &AdminController{catalog: catalog, tariffs: tariffs, chains: chains, locator: locator}
}

// ReloadTariffs handles POST /admin/tariffs/reload. A failed reload leaves
// the current registry in service.
func (ac *AdminController) ReloadTariffs(c *gin.Context) {
	if ac.tariffs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no tariff source configured"})
		return
	}
	st, err := ac.catalog.ReloadTariffs(c.Request.Context(), ac.tariffs)
	if err != nil {
		logrus.WithError(err).Error("controllers: tariff reload failed")
		status := http.StatusInternalServerError
		if errors.Is(err, tariff.ErrSourceMissing) || errors.Is(err, tariff.ErrSourceUnreadable) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": st})
}

// RebuildGraph handles POST /admin/graph/rebuild.
func (ac *AdminController) RebuildGraph(c *gin.Context) {
	if ac.chains == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no section source configured"})
		return
	}
	st, err := ac.catalog.RebuildGraph(c.Request.Context(), ac.chains)
	if err != nil {
		logrus.WithError(err).Error("controllers: graph rebuild failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": st})
}

// WarmCoordinates handles POST /admin/coordinates/warm with a JSON body
// {"names": [...]}. Lookups run in order; the locator spaces geocoder calls.
func (ac *AdminController) WarmCoordinates(c *gin.Context) {
	var body struct {
		Names []string `json:"names" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body.Names) > maxWarmBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many names in one batch"})
		return
	}
	if ac.locator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "coordinate lookup is not configured"})
		return
	}

	ctx := c.Request.Context()
	found := 0
	missing := []string{}
	for _, name := range body.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if _, ok := ac.locator.Locate(ctx, name); ok {
			found++
		} else {
			missing = append(missing, name)
		}
	}
	logrus.WithFields(logrus.Fields{"found": found, "missing": len(missing)}).Info("controllers: coordinate cache warmed")
	c.JSON(http.StatusOK, gin.H{"found": found, "missing": missing})
}
