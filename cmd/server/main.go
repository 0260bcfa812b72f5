package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rail_distance/internal/config"
	"rail_distance/internal/distance"
	"rail_distance/internal/geo"
	"rail_distance/internal/logger"
	"rail_distance/internal/metrics"
	"rail_distance/internal/middleware"
	"rail_distance/internal/repository"
	"rail_distance/internal/routes"
	"rail_distance/internal/tariff"

	"github.com/gin-gonic/gin"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	logger.Setup(settings.LogFile, settings.LogLevel)
	if settings.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}
	metrics.Init()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDB(settings.Database)
	if err != nil {
		logrus.WithError(err).Fatal("server: database unavailable")
	}

	users := repository.NewUserRepository(db)
	if settings.AdminEmail != "" {
		if err := users.EnsureAdmin(ctx, settings.AdminEmail, settings.AdminPassword); err != nil {
			logrus.WithError(err).Fatal("server: could not provision admin account")
		}
	}

	tariffs, chains := sources(settings, db)
	catalog := distance.NewCatalog(nil, nil)
	if st, err := catalog.ReloadTariffs(ctx, tariffs); err != nil {
		if !settings.AllowDegraded {
			logrus.WithError(err).Fatal("server: tariff registry failed to load")
		}
		logrus.WithError(err).Warn("server: starting degraded without a tariff registry")
	} else if st.Stations == 0 {
		logrus.Warn("server: tariff registry is empty, run tariffimport")
	}
	if _, err := catalog.RebuildGraph(ctx, chains); err != nil {
		logrus.WithError(err).Warn("server: adjacency graph unavailable")
	}

	coordinates := repository.NewCoordinateRepository(db)
	locator := geo.NewLocator(
		coordinates,
		geo.NewOverpassClient(geo.OverpassConfig{BaseURL: settings.OverpassURL, Timeout: settings.GeocoderTimeout}),
		settings.GeocoderPause,
	)
	corridors, err := geo.LoadCorridors(settings.CorridorsFile)
	if err != nil {
		logrus.WithError(err).Fatal("server: corridor table invalid")
	}
	estimator := geo.NewEstimator(locator, settings.WindingFactor, corridors)

	router := routes.SetupRouter(routes.Dependencies{
		Service: distance.NewService(catalog, estimator),
		Tariffs: tariffs,
		Chains:  chains,
		Locator: locator,
		Records: coordinates,
		Users:   users,
		Auth:    middleware.NewAuth(settings.JWTSecret),
	})

	srv := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("addr", settings.HTTPAddr).Info("server: listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server: listen failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server: shutdown")
	}
	logrus.Info("server: stopped")
}

// sources picks where tariff tables and station chains are read from.
func sources(s config.Settings, db *gorm.DB) (tariff.Source, distance.ChainSource) {
	if s.TariffSource == config.TariffSourceFiles {
		fs := tariff.NewFileSource(s.TariffDataDir)
		return fs, distance.FileChains{Source: fs}
	}
	return repository.NewTariffRepository(db), repository.NewSectionRepository(db)
}

