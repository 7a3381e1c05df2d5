package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloud66-oss/geotrace/cache"
	"github.com/cloud66-oss/geotrace/lookup"
	"github.com/cloud66-oss/geotrace/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups over HTTP",
	Run:   execServe,
}

func init() {
	serveCmd.PersistentFlags().String("binding", "0.0.0.0", "API binding")
	serveCmd.PersistentFlags().Int("port", 9912, "API port")

	viper.BindPFlag("api.binding", serveCmd.PersistentFlags().Lookup("binding"))
	viper.BindPFlag("api.port", serveCmd.PersistentFlags().Lookup("port"))

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.size", 128)

	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	lookuper *lookup.Lookuper
	cache    cache.CacheProvider
	provider string
}

func (s *apiServer) getLookup(c echo.Context) error {
	address := c.Param("address")
	cached := viper.GetBool("cache.enabled") && s.cache != nil

	log.Debug().Str("address", address).Str("provider", s.provider).Msg("looking up")

	if cached {
		result, err := s.cache.Fetch(c.Request().Context(), s.provider, address)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch from cache")
		}

		if result != nil {
			log.Trace().Str("address", address).Msg("returning cached value")
			return c.JSON(http.StatusOK, result)
		}
	}

	result := s.lookuper.Lookup(c.Request().Context(), address)

	// errored results are not cached: the next request should retry
	if cached && result.Error == "" {
		if err := s.cache.Add(c.Request().Context(), s.provider, result); err != nil {
			log.Error().Err(err).Msg("failed to update cache")
		}
	}

	return c.JSON(http.StatusOK, result)
}

func ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

func execServe(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	lookuper, err := lookup.New(lookup.Config{
		Provider: viper.GetString("provider"),
		APIKey:   viper.GetString("providers.ipinfo.token"),
		DataDir:  viper.GetString("data.dir"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid lookup configuration")
	}
	defer lookuper.Close()

	server := &apiServer{
		lookuper: lookuper,
		provider: viper.GetString("provider"),
	}

	if viper.GetBool("cache.enabled") {
		resultCache, err := cache.NewLocalCache(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start cache")
		}
		server.cache = resultCache
	}

	if err := startServer(ctx, server); err != nil {
		log.Fatal().Err(err).Msg("failed to start the api server")
	}
}

func startServer(ctx context.Context, server *apiServer) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID())
	e.Use(utils.RequestLogger(&log.Logger))
	e.GET("/_ping", ping)
	e.GET("/v1/lookup/:address", server.getLookup)

	go func() {
		if err := e.Start(fmt.Sprintf("%s:%d", viper.GetString("api.binding"), viper.GetInt("api.port"))); err != nil {
			if err != http.ErrServerClosed {
				log.Error().Err(err).Msg("failed to start the server")
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal(err)
	}

	return nil
}
