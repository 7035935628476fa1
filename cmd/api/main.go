package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"nabha/cmd/internal/config"
	"nabha/cmd/internal/domain/ledger"
	"nabha/cmd/internal/domain/seed"
	"nabha/cmd/internal/domain/sqlite"
	"nabha/cmd/internal/domain/sqlite/repository"
	redisclient "nabha/cmd/internal/integration/redis"
	"nabha/cmd/internal/routes"
	"nabha/cmd/internal/service"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/validators"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nabha",
		Short: "Nabha telehealth API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(ledgerCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.SeedDemo, _ = cmd.Flags().GetBool("seed")
			}
			return runServer(cfg)
		},
	}
	cmd.Flags().Bool("seed", true, "load the demo clinic on startup")
	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the health record ledger",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Walk a file-backed ledger and check every link",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				return errors.New("--path is required")
			}

			l, err := ledger.Open(path)
			if err != nil {
				return err
			}
			defer l.Close()

			report, err := l.Verify()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("ledger broken at height %d", *report.BrokenAt)
			}
			return nil
		},
	}
	verifyCmd.Flags().String("path", "", "directory of the LevelDB ledger")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print one ledger entry, the latest by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				return errors.New("--path is required")
			}

			l, err := ledger.Open(path)
			if err != nil {
				return err
			}
			defer l.Close()

			height, _ := cmd.Flags().GetInt("height")
			if height < 0 {
				latest, err := l.Height()
				if err != nil {
					return err
				}
				if latest == 0 {
					return errors.New("ledger is empty")
				}
				height = latest - 1
			}

			entry, err := l.Get(height)
			if err != nil {
				return fmt.Errorf("entry %d: %w", height, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entry)
		},
	}
	showCmd.Flags().String("path", "", "directory of the LevelDB ledger")
	showCmd.Flags().Int("height", -1, "entry height, negative for the latest")

	cmd.AddCommand(verifyCmd)
	cmd.AddCommand(showCmd)
	return cmd
}

func runServer(cfg *config.Config) error {
	validate := validator.New()
	registerValidators(validate)

	// Init SQLite
	db, err := sqlite.Init(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	recordLedger, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("open record ledger: %w", err)
	}
	defer recordLedger.Close()

	publisher, closePublisher := notificationPublisher(cfg)
	defer closePublisher()

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	recordRepo := repository.NewHealthRecordRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	stockRepo := repository.NewStockRepository(db)

	feed := service.NewNotificationFeed(publisher)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	if cfg.SeedDemo {
		stores := seed.Stores{Users: userRepo, Medicines: medicineRepo, Stock: stockRepo}
		if err := seed.Demo(stores, cfg.DemoDoctorPhone, time.Now()); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		seed.Notifications(feed)
	}

	// Getting services
	userService := service.NewUserService(userRepo, validate, tokens, service.AuthSettings{
		MockOtp:         cfg.MockOtp,
		DemoDoctorPhone: cfg.DemoDoctorPhone,
	})
	apptService := service.NewAppointmentService(apptRepo, userRepo, medicineRepo, recordLedger, feed, validate)
	recordService := service.NewHealthRecordService(recordRepo, userRepo, recordLedger, feed, validate)
	stockService := service.NewStockService(stockRepo, medicineRepo, userRepo, feed, validate)

	router := &routes.Router{
		Users:         routes.NewUserDefault(userService),
		Appointments:  routes.NewAppointmentDefault(apptService),
		HealthRecords: routes.NewHealthRecordDefault(recordService),
		Stock:         routes.NewStockDefault(stockService),
		Notifications: routes.NewNotificationDefault(feed),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(utils.TokenMiddleware(tokens))
	router.Mount(e)

	go func() {
		log.Infof("listening on %s (env %s)", cfg.Addr(), cfg.Env)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}

// notificationPublisher returns the Redis fan-out when REDIS_ADDR is set and
// reachable. Otherwise notifications stay in process.
func notificationPublisher(cfg *config.Config) (service.NotificationPublisher, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}

	client := redisclient.NewClient(redisclient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisclient.Ping(ctx, client); err != nil {
		log.Warnf("redis at %s unreachable, notifications stay in process: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return nil, func() {}
	}

	publisher := redisclient.NewNotificationPublisher(client)
	return publisher, func() { _ = publisher.Close() }
}

func registerValidators(validate *validator.Validate) {
	validators.Register(validate)
}
