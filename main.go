package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/Drolfothesgnir/bbstyle/api"
	"github.com/Drolfothesgnir/bbstyle/bbcode"
	"github.com/Drolfothesgnir/bbstyle/imagefetch"
	"github.com/Drolfothesgnir/bbstyle/tmpstore"
	"github.com/Drolfothesgnir/bbstyle/util"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGINT,
}

func main() {
	// reading .env config file
	config, err := util.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot read config file")
	}

	if config.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Configure the validator to use json tags for field names in errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}

	// catching interrupt signals for graceful shutdown
	// stop() or a signal catch makes context Done
	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	// the shared icon store is optional, every instance keeps its own cache anyway
	var store tmpstore.Store
	if config.RedisAddress != "" {
		store = tmpstore.NewStore(&config)
	}

	fetcher, err := newFetcher(config, store)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create image fetcher")
	}

	parser := bbcode.NewParser(
		bbcode.WithLinks(api.LinksFromConfig(config)),
		bbcode.WithLinkPlaceholder(config.LinkPlaceholder),
		bbcode.WithPendingGlyph(config.PendingGlyph),
		bbcode.WithStripHTML(config.StripHTML),
		bbcode.WithImageFetcher(fetcher),
		bbcode.WithLogger(log.Logger),
	)

	// waitgroup which manages goroutines for starting and stopping HTTP server
	waitGroup, ctx := errgroup.WithContext(ctx)

	RunGinServer(ctx, waitGroup, config, parser, fetcher, store)

	err = waitGroup.Wait()
	if err != nil {
		log.Fatal().Err(err).Msg("error from wait group")
	}
}

func newFetcher(config util.Config, store tmpstore.Store) (*imagefetch.Fetcher, error) {
	opts := []imagefetch.Option{
		imagefetch.WithTimeout(config.FetchTimeout),
		imagefetch.WithCacheSize(config.IconCacheSize),
		imagefetch.WithLogger(log.Logger),
	}

	if config.FetchRateLimit > 0 {
		opts = append(opts, imagefetch.WithRateLimit(rate.Limit(config.FetchRateLimit), config.FetchBurst))
	}

	if store != nil {
		opts = append(opts, imagefetch.WithSharedStore(store, config.IconCacheTTL))
	}

	return imagefetch.NewFetcher(opts...)
}

func RunGinServer(
	ctx context.Context,
	waitGroup *errgroup.Group,
	config util.Config,
	renderer api.Renderer,
	images api.ImageSource,
	store tmpstore.Store,
) {
	service, err := api.NewService(config, renderer, images)
	if err != nil {
		log.Error().Err(err).Msg("cannot create HTTP service")
		return
	}

	waitGroup.Go(func() error {
		log.Info().Msgf("start HTTP server at %s", config.HTTPServerAddress)

		err := service.Start()

		if err != nil {
			//http.ErrServerClosed is returned once the server begins shutting down
			// which is normal
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			log.Error().Err(err).Msg("cannot start HTTP server")
		}

		return err
	})

	waitGroup.Go(func() error {
		<-ctx.Done()

		log.Info().Msg("HTTP server: graceful shutdown")

		// give the server 5 secs to finish all his processes
		toCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := service.Shutdown(toCtx)

		if err != nil {
			log.Error().Err(err).Msg("cannot shutdown HTTP server gracefully")
		}

		if store != nil {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("cannot close the icon store")
			}
		}

		log.Info().Msg("HTTP server is stopped")

		return err
	})
}
