// Command tariffimport parses the tariff book exports in a directory and
// replaces the station registry, distance matrices and station sections
// stored in the database.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"rail_distance/internal/config"
	"rail_distance/internal/graph"
	"rail_distance/internal/logger"
	"rail_distance/internal/repository"
	"rail_distance/internal/tariff"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	dir := flag.String("dir", settings.TariffDataDir, "directory with 1-*, 2-РП and 3-* tables")
	skipSections := flag.Bool("skip-sections", false, "do not replace station sections")
	flag.Parse()

	logger.Setup(settings.LogFile, settings.LogLevel)
	if *dir == "" {
		logrus.Fatal("tariffimport: -dir or TARIFF_DATA_DIR is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := config.OpenDB(settings.Database)
	if err != nil {
		logrus.WithError(err).Fatal("tariffimport: database unavailable")
	}

	src := tariff.NewFileSource(*dir)
	log := logrus.WithField("dir", *dir)

	stations, err := src.Stations(ctx)
	if err != nil {
		log.WithError(err).Fatal("tariffimport: station registry")
	}
	matrices, err := src.Matrices(ctx)
	if err != nil {
		log.WithError(err).Fatal("tariffimport: distance matrices")
	}

	tariffs := repository.NewTariffRepository(db)
	if err := tariffs.ReplaceStations(ctx, stations); err != nil {
		log.WithError(err).Fatal("tariffimport: store stations")
	}
	if err := tariffs.ReplaceMatrices(ctx, matrices); err != nil {
		log.WithError(err).Fatal("tariffimport: store matrices")
	}

	if !*skipSections {
		sections, err := readSections(ctx, src)
		switch {
		case errors.Is(err, tariff.ErrSourceMissing):
			log.WithError(err).Warn("tariffimport: no section files, keeping stored sections")
		case err != nil:
			log.WithError(err).Fatal("tariffimport: sections")
		default:
			if err := repository.NewSectionRepository(db).Replace(ctx, sections); err != nil {
				log.WithError(err).Fatal("tariffimport: store sections")
			}
		}
	}

	log.WithFields(logrus.Fields{"stations": len(stations), "matrices": len(matrices)}).Info("tariffimport: done")
}

func readSections(ctx context.Context, src *tariff.FileSource) ([]repository.Section, error) {
	tables, err := src.SectionTables(ctx)
	if err != nil {
		return nil, err
	}
	var out []repository.Section
	for _, t := range tables {
		for _, chain := range graph.ParseSectionRows(t.Rows) {
			out = append(out, repository.Section{Source: t.Name, Stops: chain})
		}
	}
	return out, nil
}
