package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rail_distance/internal/controllers"
	"rail_distance/internal/distance"
	"rail_distance/internal/middleware"
	"rail_distance/internal/models"
	"rail_distance/internal/tariff"
)

// Dependencies are the components the HTTP API is wired to. Locator, Records,
// Chains and Users may be nil; the endpoints that need them then answer 503 or are
// not mounted.
type Dependencies struct {
	Service *distance.Service
	Tariffs tariff.Source
	Chains  distance.ChainSource
	Locator controllers.CoordinateLocator
	Records controllers.CoordinateRecords
	Users   controllers.Authenticator
	Auth    *middleware.Auth
}

// SetupRouter builds the gin engine with every route mounted.
func SetupRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(ginlog.SetLogger(ginlog.WithSkipPath([]string{"/healthz", "/metrics"})))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	catalog := d.Service.Catalog()
	r.GET("/healthz", controllers.Health(catalog))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	DistanceRoutes(r, d)
	StationRoutes(r, d)
	if d.Auth != nil {
		AuthRoutes(r, d)
		AdminRoutes(r, d, catalog)
	}
	return r
}

func DistanceRoutes(r *gin.Engine, d Dependencies) {
	dc := controllers.NewDistanceController(d.Service)
	dist := r.Group("/distance")
	{
		dist.GET("", dc.GetDistance)
		dist.GET("/remaining", dc.GetRemaining)
	}
}

func StationRoutes(r *gin.Engine, d Dependencies) {
	sc := controllers.NewStationController(d.Service, d.Locator, d.Records)
	st := r.Group("/stations")
	{
		st.GET("/search", sc.Search)
		st.GET("/coordinates", sc.Coordinates)
	}
}

func AuthRoutes(r *gin.Engine, d Dependencies) {
	if d.Users == nil {
		return
	}
	ac := controllers.NewAuthController(d.Users, d.Auth)
	auth := r.Group("/auth")
	{
		auth.POST("/login", ac.Login)
	}
}

func AdminRoutes(r *gin.Engine, d Dependencies, catalog *distance.Catalog) {
	ac := controllers.NewAdminController(catalog, d.Tariffs, d.Chains, d.Locator)
	admin := r.Group("/admin")
	admin.Use(d.Auth.RequireRole(models.RoleAdmin))
	{
		admin.POST("/tariffs/reload", ac.ReloadTariffs)
		admin.POST("/graph/rebuild", ac.RebuildGraph)
		admin.POST("/coordinates/warm", ac.WarmCoordinates)
	}
}
