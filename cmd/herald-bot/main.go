package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"uk.co.dudmesh.herald/internal/boot"
	"uk.co.dudmesh.herald/internal/drafter"
	"uk.co.dudmesh.herald/internal/handlers"
	"uk.co.dudmesh.herald/internal/ledger"
	"uk.co.dudmesh.herald/internal/model"
	"uk.co.dudmesh.herald/internal/orchestrator"
	"uk.co.dudmesh.herald/internal/platform"
	"uk.co.dudmesh.herald/internal/scheduler"
	"uk.co.dudmesh.herald/internal/source"
	"uk.co.dudmesh.herald/internal/translate"
)

var contentKinds = []model.ContentKind{
	model.ContentKindVerse,
	model.ContentKindMarkets,
	model.ContentKindNews,
}

func main() {
	dryRun := flag.Bool("dry-run", false, "simulate delivery without posting")
	preview := flag.Bool("preview", false, "render every content kind once and exit")
	flag.Parse()

	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}
	if *dryRun {
		config.DryRun = true
	}

	locales := map[string]model.Locale{
		"en": {
			Language:   model.LanguagePrimary,
			Timezone:   config.Schedule.PrimaryTimezone,
			MaxReplies: config.Schedule.PrimaryMaxReplies,
		},
		"zh": {
			Language:   model.LanguageSecondary,
			Timezone:   config.Schedule.SecondaryTimezone,
			MaxReplies: config.Schedule.SecondaryMaxReplies,
		},
	}

	store, err := ledger.Open(path.Join(config.DataDir, "herald.db"))
	if err != nil {
		log.Fatalf("opening ledger: %+v", err)
	}
	defer store.Close()

	api := platform.NewXAPI(platform.Credentials{
		APIKey:       config.Platform.APIKey,
		APISecret:    config.Platform.APISecret,
		AccessToken:  config.Platform.AccessToken,
		AccessSecret: config.Platform.AccessSecret,
	})
	client := platform.New(api, config.DryRun, config.PacingInterval())

	pipeline := orchestrator.New(
		orchestrator.Sources{
			Verse:   source.NewBible(),
			Markets: source.NewMarkets(),
			News:    source.NewNews(config.NewsAPIKey),
		},
		translate.NewGoogle(),
		drafter.New(config.GroqAPIKey),
		client,
		store,
		config.EnableTranslation,
	)

	if *preview {
		previewAll(pipeline, locales)
		return
	}

	log.Infof("herald starting (env=%s dry_run=%t translation=%t)", config.Env, config.DryRun, config.EnableTranslation)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched, err := buildSchedule(pipeline, locales)
	if err != nil {
		log.Fatalf("building schedule: %+v", err)
	}
	go sched.Start(ctx)

	server := echo.New()
	server.HideBanner = true
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("herald"))
	server.Use(middleware.Recover())
	server.Logger.SetLevel(log.INFO)

	t, _ := handlers.NewTemplate()
	defer t.Close()
	if config.IsDevelopment() {
		t.Watch()
	}
	server.Renderer = t

	server.GET("/", handlers.StatusPage(store))
	server.GET("/status", handlers.Status(store))
	server.GET("/preview/:kind", handlers.Preview(pipeline, locales))

	go func() {
		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		server.Logger.Fatal(err)
	}
}

// buildSchedule registers the six daily jobs: three content kinds per
// locale, an hour apart, each in its locale's timezone.
func buildSchedule(pipeline *orchestrator.Orchestrator, locales map[string]model.Locale) (*scheduler.Scheduler, error) {
	sched := scheduler.New(pipeline)

	for name, locale := range locales {
		location, err := time.LoadLocation(locale.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", locale.Timezone, err)
		}
		for i, kind := range contentKinds {
			sched.Add(scheduler.Job{
				Name:     fmt.Sprintf("%s-%s", name, kind),
				Hour:     7 + i,
				Minute:   0,
				Location: location,
				Kind:     kind,
				Locale:   locale,
			})
		}
	}

	return sched, nil
}

// previewAll prints the assembled thread for every kind and locale, the
// command-line counterpart of the /preview endpoint.
func previewAll(pipeline *orchestrator.Orchestrator, locales map[string]model.Locale) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for name, locale := range locales {
		for _, kind := range contentKinds {
			fmt.Printf("=== %s (%s) ===\n", kind, name)
			thread, err := pipeline.Preview(ctx, kind, locale)
			if err != nil {
				fmt.Printf("error: %v\n\n", err)
				continue
			}
			for i, post := range thread {
				label := "main"
				if i > 0 {
					label = fmt.Sprintf("reply %d", i)
				}
				fmt.Printf("--- %s (%d chars) ---\n%s\n", label, model.PostLength(post.Text), post.Text)
			}
			fmt.Println()
		}
	}
}
