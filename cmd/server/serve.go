package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	grpcadapter "github.com/simaogato/hostelflow-backend/internal/adapter/grpc"
	"github.com/simaogato/hostelflow-backend/internal/adapter/lock"
	"github.com/simaogato/hostelflow-backend/internal/adapter/repository/memory"
	"github.com/simaogato/hostelflow-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/hostelflow-backend/internal/adapter/rest"
	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/infrastructure/config"
	"github.com/simaogato/hostelflow-backend/internal/usecase/booking"
	"github.com/simaogato/hostelflow-backend/internal/usecase/expense"
	"github.com/simaogato/hostelflow-backend/internal/usecase/fund"
	"github.com/simaogato/hostelflow-backend/internal/usecase/monthly"
	"github.com/simaogato/hostelflow-backend/internal/usecase/rates"
	"github.com/simaogato/hostelflow-backend/internal/usecase/revenue"
	"github.com/simaogato/hostelflow-backend/internal/usecase/roi"
	"github.com/simaogato/hostelflow-backend/internal/usecase/seeder"
)

const healthInterval = 15 * time.Second

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and the admin gRPC server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

// repositories is the storage selected by storage.driver
type repositories struct {
	apartments domain.ApartmentRepository
	bookings   domain.BookingRepository
	fund       domain.FundTransactionRepository
	expenses   domain.ExpenseRepository
	checks     map[string]func(context.Context) error
	close      func() error
}

func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repositories, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("Using in-memory storage; data is lost on restart")
		return &repositories{
			apartments: memory.NewApartmentRepository(),
			bookings:   memory.NewBookingRepository(),
			fund:       memory.NewFundTransactionRepository(),
			expenses:   memory.NewExpenseRepository(),
			checks:     map[string]func(context.Context) error{},
			close:      func() error { return nil },
		}, nil
	}

	dsn := cfg.Database.DSN()
	if cfg.Storage.AutoMigrate {
		m, err := postgres.NewMigrator(dsn, log)
		if err != nil {
			return nil, err
		}
		upErr := m.Up()
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
		if upErr != nil {
			return nil, upErr
		}
	}

	db, err := postgres.NewDB(ctx, dsn, postgres.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("dbname", cfg.Database.DBName))

	return &repositories{
		apartments: postgres.NewApartmentRepository(db),
		bookings:   postgres.NewBookingRepository(db),
		fund:       postgres.NewFundTransactionRepository(db),
		expenses:   postgres.NewExpenseRepository(db),
		checks:     map[string]func(context.Context) error{"database": db.PingContext},
		close:      db.Close,
	}, nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close()

	locker, err := lock.NewRoomLocker(cfg, log)
	if err != nil {
		return err
	}
	if closer, ok := locker.(io.Closer); ok {
		defer closer.Close()
	}

	source, err := rates.ParseStaticSource(cfg.Currency.Rates)
	if err != nil {
		return fmt.Errorf("invalid currency.rates: %w", err)
	}
	rateTable := rates.NewTable(domain.Currency(cfg.Currency.Base), source, log)
	if err := rateTable.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load currency rates: %w", err)
	}
	secondary := domain.Currency(cfg.Currency.Secondary)

	if cfg.Catalog.Path != "" {
		n, err := seeder.NewCatalogSeeder(repos.apartments, log).SeedFile(ctx, cfg.Catalog.Path)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		log.Info("Catalog seeded", zap.String("path", cfg.Catalog.Path), zap.Int("created", n))
	}

	distributor := revenue.NewDistributor(rateTable, secondary)
	bookingService := booking.NewBookingService(repos.apartments, repos.bookings, locker, rateTable, log)
	roiService := roi.NewROIService(repos.apartments, repos.bookings, distributor, log)
	monthlyService := monthly.NewMonthlyService(repos.apartments, repos.bookings, repos.fund, repos.expenses, rateTable, distributor, log)
	fundService := fund.NewFundService(repos.fund, rateTable, secondary, log)
	expenseService := expense.NewExpenseService(repos.expenses, repos.apartments, rateTable, log)

	restChecks := make(map[string]rest.HealthCheck, len(repos.checks))
	grpcChecks := make(map[string]grpcadapter.HealthCheck, len(repos.checks))
	for name, check := range repos.checks {
		restChecks[name] = check
		grpcChecks[name] = check
	}

	router := rest.NewRouter(rest.Handlers{
		Catalog: rest.NewCatalogHandler(repos.apartments, bookingService),
		Booking: rest.NewBookingHandler(bookingService, repos.apartments, rateTable, distributor),
		Finance: rest.NewFinanceHandler(roiService, monthlyService, fundService, expenseService, rateTable),
		Health:  restChecks,
	}, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	httpLis, grpcLis, err := openListeners(cfg)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", httpLis.Addr().String()))
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	var admin *grpcadapter.AdminServer
	if grpcLis != nil {
		admin = grpcadapter.NewAdminServer(cfg.GRPC.APIToken, grpcChecks, log)
		g.Go(func() error {
			log.Info("gRPC admin server listening", zap.String("addr", grpcLis.Addr().String()))
			if err := admin.Serve(grpcLis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			admin.MonitorHealth(gctx, healthInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if admin != nil {
			admin.Stop()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		log.Info("Servers stopped")
		return nil
	})

	return g.Wait()
}

// openListeners binds the HTTP port and, when enabled, the gRPC port before
// anything is served. On failure nothing is left bound.
func openListeners(cfg *config.Config) (httpLis, grpcLis net.Listener, err error) {
	httpLis, err = net.Listen("tcp", ":"+cfg.HTTP.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on http port %s: %w", cfg.HTTP.Port, err)
	}
	if !cfg.GRPC.Enabled {
		return httpLis, nil, nil
	}

	grpcLis, err = net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		httpLis.Close()
		return nil, nil, fmt.Errorf("failed to listen on grpc port %s: %w", cfg.GRPC.Port, err)
	}
	return httpLis, grpcLis, nil
}
