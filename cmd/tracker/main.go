package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/agent"
	"github.com/moadamda/tracker/internal/config"
	"github.com/moadamda/tracker/internal/host/rodhost"
	"github.com/moadamda/tracker/internal/lifecycle"
	"github.com/moadamda/tracker/internal/logger"
)

func main() {
	fmt.Println("Moadamda Tracker starting...")

	// Flags
	pageURL := flag.String("url", "", "URL of the storefront page to attach the tracker to.")
	pageURLAlias := flag.String("u", "", "Alias for --url")

	configFile := flag.String("globalconfig", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("gc", "", "Alias for --globalconfig")

	chromePath := flag.String("chrome-path", "", "Path to the Chrome/Chromium binary. If not set, go-rod resolves one.")
	headless := flag.Bool("headless", true, "Run the browser headless.")
	flag.Parse()

	// Consolidate alias flags
	if *pageURL == "" && *pageURLAlias != "" {
		*pageURL = *pageURLAlias
	}
	if *configFile == "" && *configFileAlias != "" {
		*configFile = *configFileAlias
	}

	if *pageURL == "" {
		log.Fatalln("[FATAL] --url argument is required")
	}

	log.Println("[INFO] Main: Attempting to load tracker configuration...")
	bootstrapLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	configPath := config.GetConfigPath(*configFile)
	cfg, err := config.LoadTrackerConfig(configPath, bootstrapLogger)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load config using path '%s': %v", configPath, err)
	}
	log.Println("[INFO] Main: Tracker configuration loaded successfully.")

	// Initialize zerolog logger
	zLogger, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}
	zLogger.Info().Msg("Logger initialized successfully.")

	// Launch the browser and open the page
	browserLauncher := launcher.New().Headless(*headless)
	if *chromePath != "" {
		browserLauncher = browserLauncher.Bin(*chromePath)
	}
	launchURL, err := browserLauncher.Launch()
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to launch browser")
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to connect to browser")
	}
	defer func() {
		_ = browser.Close()
		browserLauncher.Cleanup()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: *pageURL})
	if err != nil {
		zLogger.Fatal().Err(err).Str("url", *pageURL).Msg("Failed to open page")
	}
	if err := page.WaitLoad(); err != nil {
		zLogger.Fatal().Err(err).Str("url", *pageURL).Msg("Page did not finish loading")
	}
	zLogger.Info().Str("url", *pageURL).Msg("Page loaded, attaching tracker")

	pageHost, err := rodhost.Attach(page, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to attach host adapter")
	}

	trackerAgent := agent.New(cfg, pageHost, lifecycle.NewTickerScheduler(), lifecycle.SystemClock(), zLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := trackerAgent.Start(ctx); err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to start tracker")
	}

	// Graceful shutdown on interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, initiating graceful shutdown...")
	case <-trackerAgent.Done():
		zLogger.Info().Msg("Host context ended")
	}

	cancel()
	trackerAgent.Stop()
	pageHost.Detach()
	zLogger.Info().Msg("Moadamda Tracker finished.")
}
