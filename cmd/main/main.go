package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/config"
	"storefront/catalogsync/internal/container"
	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/pricing"
)

const usage = `usage: catalogsync [command]

commands:
  sync                  mirror the admin catalog selection and retry failed chunks (default)
  browse [query]        show one product list page, e.g. browse "gender=Women&sort=price-low"
  favorite <product id> toggle a favorite for the signed-in user`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("⚠️ Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warnf("⚠️ Unknown log level %q, using info", cfg.Log.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer app.Close()

	command := "sync"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "sync":
		log.Info("Starting catalog sync...")
		err = app.Run(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	case "browse":
		err = browse(ctx, app, os.Args[2:])
	case "favorite":
		err = toggleFavorite(ctx, app, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Errorf("Application exited with error: %v", err)
		app.Close()
		os.Exit(1)
	}

	log.Info("Application finished successfully")
}

func browse(ctx context.Context, app *container.Container, args []string) error {
	external := url.Values{}
	if len(args) > 0 {
		parsed, err := url.ParseQuery(args[0])
		if err != nil {
			return fmt.Errorf("invalid query %q: %w", args[0], err)
		}
		external = parsed
	}

	view := app.Storefront.Browse(ctx, external)
	if view.Failed {
		return errors.New(view.Message)
	}

	for _, item := range view.Items {
		price := pricing.EffectivePrice(item).StringFixed(pricing.PricePrecision)
		fmt.Printf("%s  %-40s %10s\n", item.ID, item.Name, price)
	}
	fmt.Printf("page %d of %d, %d items", view.Filters.Page, view.TotalPages, view.TotalCount)
	if view.Degraded {
		fmt.Print(" (reduced page, the catalog is slow)")
	}
	fmt.Println()
	return nil
}

func toggleFavorite(ctx context.Context, app *container.Container, args []string) error {
	if len(args) != 1 {
		return errors.New("favorite needs exactly one product id")
	}

	isFavorite, err := app.Storefront.Favorites.Toggle(ctx, args[0])
	if err != nil {
		if domain.IsAuthenticationRequired(err) {
			return errors.New("sign in first: set SESSION_TOKEN")
		}
		return fmt.Errorf("%s: %w", domain.UserMessage(err), err)
	}

	fmt.Printf("%s favorite: %t\n", args[0], isFavorite)
	return nil
}
