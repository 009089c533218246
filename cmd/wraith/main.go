// Package main is the entry point for wraith, a scriptable headless-browser
// automation tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"wraith-go/application"
	"wraith-go/application/session"
	"wraith-go/core/eventbus"
	"wraith-go/domain/resource"
	domainscript "wraith-go/domain/script"
	"wraith-go/infrastructure/browser"
	"wraith-go/infrastructure/display"
	"wraith-go/infrastructure/logging"
	"wraith-go/infrastructure/repository"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		url        = flag.String("url", "", "URL to open")
		method     = flag.String("method", "GET", "HTTP method for -url (GET or POST)")
		body       = flag.String("body", "", "urlencoded request body for POST navigations")
		scriptName = flag.String("script", "", "name of the automation script to run")
		scriptsDir = flag.String("scripts", "", "directory of YAML automation scripts")
		outPNG     = flag.String("out", "", "write a screenshot of the page to this PNG file")
		outPDF     = flag.String("pdf", "", "render the page to this PDF file")
		show       = flag.Bool("show", false, "run a visible browser (spawns Xvfb when no display is present)")
		timeout    = flag.Duration("timeout", 0, "wait timeout override")
	)
	flag.Parse()

	// Initialize logging (dev: console only, prod: rotating file)
	logger, closeLog, err := logging.Setup(nil)
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	cfg, err := LoadAppConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if *url == "" && *scriptName == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -url or -script")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	// Load automation scripts
	scriptRegistry := domainscript.NewRegistry()
	dir := *scriptsDir
	if dir == "" {
		dir = cfg.ScriptsDir
	}
	if dir != "" {
		loader := domainscript.NewLoader(scriptRegistry)
		if err := loader.LoadFromDir(dir); err != nil {
			logger.Error("Failed to load scripts", "error", err)
			os.Exit(1)
		}
		logger.Info("Scripts loaded", "count", scriptRegistry.Count())
	}

	// Optional resource archive
	var archive resource.Archive
	if cfg.Mongo.Enabled {
		mongoCfg := repository.DefaultMongoDBConfig()
		if cfg.Mongo.URI != "" {
			mongoCfg.URI = cfg.Mongo.URI
		}
		if cfg.Mongo.Database != "" {
			mongoCfg.Database = cfg.Mongo.Database
		}
		mongoDB, err := repository.NewMongoDB(ctx, mongoCfg, logger)
		if err != nil {
			logger.Error("Failed to initialize MongoDB", "error", err)
			os.Exit(1)
		}
		defer mongoDB.Close(ctx)
		archive = repository.NewMongoResourceArchive(mongoDB, logger)
	}

	// Event bus
	eventBus := eventbus.New(100)
	defer eventBus.Close()

	headless := !*show
	if cfg.Browser.Headless != nil && !*show {
		headless = *cfg.Browser.Headless
	}

	sessionTemplate := session.Config{
		Headless:     headless,
		WaitTimeout:  time.Duration(cfg.Session.WaitTimeout),
		PollInterval: time.Duration(cfg.Session.PollInterval),
		Logger:       logger,
	}
	if *timeout > 0 {
		sessionTemplate.WaitTimeout = *timeout
	}
	if cfg.Display.Number > 0 {
		dispCfg := display.DefaultConfig()
		dispCfg.Number = cfg.Display.Number
		sessionTemplate.DisplayConfig = dispCfg
	}

	coordinator := application.NewCoordinator(&application.CoordinatorConfig{
		EventBus:        eventBus,
		ScriptRegistry:  scriptRegistry,
		Archive:         archive,
		SessionTemplate: sessionTemplate,
		DriverFactory: func() browser.Driver {
			return browser.NewChromeDPDriver(driverConfig(cfg, headless))
		},
		Logger: logger,
	})
	defer coordinator.Stop()

	s, err := coordinator.CreateSession(ctx)
	if err != nil {
		logger.Error("Failed to create session", "error", err)
		os.Exit(1)
	}

	if *url != "" {
		if err := openURL(ctx, coordinator, s, *url, *method, *body, logger); err != nil {
			logger.Error("Open failed", "url", *url, "error", err)
			os.Exit(1)
		}
	}

	if *scriptName != "" {
		if err := coordinator.RunScript(ctx, s.ID(), *scriptName); err != nil {
			logger.Error("Script failed", "script", *scriptName, "error", err)
			os.Exit(1)
		}
	}

	if *outPNG != "" {
		if err := s.CaptureTo(ctx, *outPNG); err != nil {
			logger.Error("Screenshot failed", "error", err)
			os.Exit(1)
		}
	}

	if *outPDF != "" {
		if err := s.PrintToPDF(ctx, *outPDF); err != nil {
			logger.Error("PDF export failed", "error", err)
			os.Exit(1)
		}
	}
}

// openURL navigates the session and archives the captured exchanges.
func openURL(ctx context.Context, coordinator *application.Coordinator, s *session.Session, url, method, body string, logger *slog.Logger) error {
	opts := []session.OpenOption{session.WithMethod(method)}
	if body != "" {
		opts = append(opts, session.WithBody(body))
	}

	page, resources, err := s.Open(ctx, url, opts...)
	if archiveErr := coordinator.ArchiveResources(ctx, s.ID(), resources); archiveErr != nil {
		logger.Warn("Failed to archive resources", "error", archiveErr)
	}
	if err != nil {
		return err
	}

	if page != nil {
		logger.Info("Page loaded", "url", page.URL, "status", page.Status, "resources", len(resources))
	}
	return nil
}

// driverConfig builds the browser driver configuration from the app config.
func driverConfig(cfg *AppConfig, headless bool) *browser.DriverConfig {
	dc := browser.DefaultDriverConfig()
	dc.Headless = headless
	if cfg.Browser.UserAgent != "" {
		dc.UserAgent = cfg.Browser.UserAgent
	}
	if cfg.Browser.ViewportWidth > 0 {
		dc.ViewportWidth = cfg.Browser.ViewportWidth
	}
	if cfg.Browser.ViewportHeight > 0 {
		dc.ViewportHeight = cfg.Browser.ViewportHeight
	}
	if cfg.Browser.IgnoreTLSErrors != nil {
		dc.IgnoreTLSErrors = *cfg.Browser.IgnoreTLSErrors
	}
	if cfg.Browser.LoadImages != nil {
		dc.LoadImages = *cfg.Browser.LoadImages
	}
	dc.ExecPath = cfg.Browser.ExecPath
	dc.UserDataDir = cfg.Browser.UserDataDir
	return dc
}
