package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/taurusai/qgrid/internal/config"
	"github.com/taurusai/qgrid/internal/http_api"
	"github.com/taurusai/qgrid/internal/models"
	"github.com/taurusai/qgrid/internal/paymentgate"
	"github.com/taurusai/qgrid/internal/platform"
	"github.com/taurusai/qgrid/internal/repository"
	"github.com/taurusai/qgrid/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "qgrid",
		Usage: "Q-GRID is a quantum-safe digital-rupee platform backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API listen port"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
			&cli.BoolFlag{Name: "in-memory", Aliases: []string{"m"}, Usage: "Use the in-memory store (demo mode, nothing persists)"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if c.IsSet("in-memory") {
		cfg.InMemory = c.Bool("in-memory")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize storage
	var repo models.Repository
	if cfg.InMemory {
		log.Warn("Running with the in-memory store; nothing will persist")
		repo = repository.NewMemoryDB()
	} else {
		repo, err = repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
	}
	defer repo.Close()

	// Initialize the payment verifier and the application service
	verifier := paymentgate.NewDemoVerifier(log)
	app := platform.NewPlatform(repo, verifier, log, cfg)

	// Initialize API server
	apiServer := http_api.NewHTTPServer(app, cfg.APIPort, log)
	go apiServer.Start()

	// Block until a shutdown signal arrives
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return apiServer.Shutdown()
}
