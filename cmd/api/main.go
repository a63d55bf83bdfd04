package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/payroll-engine-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/auditsink"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
	"github.com/redis/go-redis/v9"
)

// repositories groups the data sources the engine reads and writes.
type repositories struct {
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	leaves     leave.LeaveRequestRepository
	shifts     schedule.ShiftRepository
	payroll    payroll.PayrollRepository
	audit      audit.Sink
}

func main() {
	if err := run(); err != nil {
		slog.Error("payroll engine stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.App.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	repos, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	closers = append(closers, closeStorage)

	hub := sse.NewHub()
	sinks := auditsink.MultiSink{auditsink.NewLogSink(logger), repos.audit, hub}
	if len(cfg.Kafka.Brokers) > 0 {
		writer := auditsink.NewKafkaWriter(cfg.Kafka.Brokers)
		closers = append(closers, func() {
			if err := writer.Close(); err != nil {
				logger.Warn("failed to close kafka writer", "error", err)
			}
		})
		sinks = append(sinks, auditsink.NewKafkaSink(writer, cfg.Kafka.AuditTopic))
		logger.Info("audit publishing to kafka", "topic", cfg.Kafka.AuditTopic, "brokers", cfg.Kafka.Brokers)
	}

	var locker lock.PeriodLocker = lock.NewMemoryLocker()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return fmt.Errorf("error connecting to redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		locker = lock.NewRedisLocker(rdb, cfg.Payroll.LockTTL)
		logger.Info("payroll period lock backed by redis", "addr", cfg.Redis.Addr)
	}

	rules := cfg.PayrollRules()
	calculator := payrollService.NewCalculator(
		rules,
		repos.employees,
		repos.attendance,
		repos.leaves,
		repos.shifts,
		payrollService.WithHolidayCalendar(payrollService.NewHolidaySet(cfg.Payroll.Holidays...)),
		payrollService.WithLogger(logger),
	)
	processor := payrollService.NewProcessor(
		calculator,
		repos.employees,
		repos.payroll,
		locker,
		payrollService.WithReuseExisting(cfg.Payroll.ReuseExisting),
		payrollService.WithAuditSink(sinks),
		payrollService.WithProcessorLogger(logger),
	)
	payrollSvc := payrollService.NewPayrollService(
		calculator,
		processor,
		payrollService.NewSalaryStructureDeriver(rules.Salary),
		repos.payroll,
		sinks,
	)

	if cfg.Scheduler.Enabled {
		scheduler := cron.NewScheduler(logger)
		cron.NewPayrollJobs(processor, repos.payroll, cfg.Scheduler.ProcessingDay, logger).
			RegisterJobs(scheduler, cfg.Scheduler.Interval)
		scheduler.Start(ctx)
		closers = append(closers, scheduler.Stop)
	}

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	eventsHandler := appHTTP.NewEventsHandler(hub)
	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
	}, payrollHandler, eventsHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", server.Addr, "storage", cfg.App.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories, func(), error) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		employees := memory.NewEmployeeRepository()
		attendances := memory.NewAttendanceRepository()
		leaves := memory.NewLeaveRequestRepository()
		shifts := memory.NewShiftRepository(schedule.DefaultShifts()...)

		if cfg.App.SeedDemoData {
			prev := time.Now().UTC().AddDate(0, -1, 0)
			fixtures.Demo(int(prev.Month()), prev.Year()).Load(employees, attendances, leaves, shifts)
			logger.Info("demo data seeded", "period_month", int(prev.Month()), "period_year", prev.Year())
		}

		return repositories{
			employees:  employees,
			attendance: attendances,
			leaves:     leaves,
			shifts:     shifts,
			payroll:    memory.NewPayrollRepository(),
			audit:      memory.NewAuditSink(),
		}, func() {}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return repositories{}, nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return repositories{}, nil, fmt.Errorf("error running migrations: %w", err)
	}

	return repositories{
		employees:  postgresql.NewEmployeeRepository(db),
		attendance: postgresql.NewAttendanceRepository(db),
		leaves:     postgresql.NewLeaveRequestRepository(db),
		shifts:     postgresql.NewShiftRepository(db),
		payroll:    postgresql.NewPayrollRepository(db),
		audit:      postgresql.NewAuditSink(db),
	}, db.Close, nil
}
