// Command stationcache fills the station coordinate cache, either by looking
// up every name in a file (one per line) or by seeding every station with an
// ESR code inside an Overpass area.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"

	"rail_distance/internal/config"
	"rail_distance/internal/geo"
	"rail_distance/internal/logger"
	"rail_distance/internal/repository"
)

func main() {
	names := flag.String("names", "", "file with one station name per line")
	area := flag.String("area", "", `Overpass area (name:en) to seed by ESR code, e.g. "Russia"`)
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	logger.Setup(settings.LogFile, settings.LogLevel)
	if *names == "" && *area == "" {
		logrus.Fatal("stationcache: one of -names or -area is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := config.OpenDB(settings.Database)
	if err != nil {
		logrus.WithError(err).Fatal("stationcache: database unavailable")
	}
	store := repository.NewCoordinateRepository(db)
	client := geo.NewOverpassClient(geo.OverpassConfig{BaseURL: settings.OverpassURL, Timeout: settings.GeocoderTimeout})

	if *area != "" {
		if err := seedArea(ctx, client, store, *area); err != nil {
			logrus.WithError(err).Fatal("stationcache: seeding failed")
		}
	}
	if *names != "" {
		locator := geo.NewLocator(store, client, settings.GeocoderPause)
		if err := warmNames(ctx, locator, *names); err != nil {
			logrus.WithError(err).Fatal("stationcache: warm-up failed")
		}
	}
}

func seedArea(ctx context.Context, client *geo.OverpassClient, store geo.Store, area string) error {
	coords, err := client.StationsWithCodes(ctx, area)
	if err != nil {
		return err
	}
	saved := 0
	for _, c := range coords {
		if c.MatchedName == "" {
			continue
		}
		if err := store.Save(ctx, c, c.MatchedName); err != nil {
			return err
		}
		saved++
	}
	logrus.WithFields(logrus.Fields{"area": area, "stations": saved}).Info("stationcache: seeded by ESR code")
	return nil
}

func warmNames(ctx context.Context, locator *geo.Locator, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	found, missing := 0, 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		if _, ok := locator.Locate(ctx, name); ok {
			found++
		} else {
			missing++
			logrus.WithField("station", name).Info("stationcache: not located")
		}
	}
	logrus.WithFields(logrus.Fields{"found": found, "missing": missing}).Info("stationcache: warm-up finished")
	return sc.Err()
}
