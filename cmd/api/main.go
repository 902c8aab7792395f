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

	"github.com/dairy-admin/dairy-hr-backend/internal/config"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	appHTTP "github.com/dairy-admin/dairy-hr-backend/internal/handler/http"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/backendapi"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/cache"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/cron"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/database"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/identity"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/jwt"
	"github.com/dairy-admin/dairy-hr-backend/internal/repository/postgresql"
	attendanceService "github.com/dairy-admin/dairy-hr-backend/internal/service/attendance"
	employeeService "github.com/dairy-admin/dairy-hr-backend/internal/service/employee"
	leaveService "github.com/dairy-admin/dairy-hr-backend/internal/service/leave"
	payrollService "github.com/dairy-admin/dairy-hr-backend/internal/service/payroll"
	performanceService "github.com/dairy-admin/dairy-hr-backend/internal/service/performance"
	"github.com/go-chi/httplog/v3"
)

const statsCacheNamespace = "dairy-hr:stats"

// readers are the sources the statistics and payroll engines read from.
type readers struct {
	employees  employee.Reader
	attendance attendance.Reader
	leaves     leave.Reader
}

func newLogger(cfg *config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "dairy-hr"),
		slog.String("env", cfg.App.Env),
	)
}

func newBackendClient(ctx context.Context, cfg config.BackendConfig) *backendapi.Client {
	var creds backendapi.CredentialProvider = backendapi.StaticToken(cfg.Token)
	if cfg.UsesClientCredentials() {
		creds = backendapi.ClientCredentials(ctx, cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, cfg.Scopes...)
	}
	return backendapi.NewClient(cfg.URL, creds, cfg.Timeout)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		logger.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Statistics cache is optional
	var statsCache *cache.Cache
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, statistics will not be cached", "error", err)
		} else {
			defer redisClient.Close()
			statsCache = cache.New(redisClient, statsCacheNamespace, cfg.Redis.TTL)
		}
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	src := readers{employees: employeeRepo, attendance: attendanceRepo, leaves: leaveRequestRepo}
	if cfg.Backend.DataSource == config.DataSourceREST {
		client := newBackendClient(ctx, cfg.Backend)
		src = readers{employees: client, attendance: client, leaves: client}
		logger.Info("Reading employees, attendance and leave from backend API", "url", cfg.Backend.URL)
	}

	resolver := identity.NewResolver()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	performanceSvc := performanceService.NewPerformanceService(
		src.employees,
		src.attendance,
		resolver,
		cfg.Payroll.Weekend,
		statsCache,
		cfg.Payroll.DefaultLeaveBalance,
	)
	payrollSvc := payrollService.NewPayrollService(
		payrollRepo,
		src.employees,
		src.attendance,
		src.leaves,
		payrollService.NewEngine(resolver, cfg.Payroll.CurrencyScale),
	)

	handlers := appHTTP.Handlers{
		Performance: appHTTP.NewPerformanceHandler(performanceSvc),
		Payroll:     appHTTP.NewPayrollHandler(payrollSvc),
	}

	// Local records are only editable when postgres is the source of truth
	if cfg.Backend.DataSource == config.DataSourcePostgres {
		handlers.Employee = appHTTP.NewEmployeeHandler(employeeService.NewEmployeeService(employeeRepo, performanceSvc))
		handlers.Attendance = appHTTP.NewAttendanceHandler(attendanceService.NewAttendanceService(attendanceRepo, performanceSvc))
		handlers.Leave = appHTTP.NewLeaveHandler(leaveService.NewLeaveService(leaveRequestRepo, employeeRepo, cfg.Payroll.DefaultLeaveBalance))
	}

	router := appHTTP.NewRouter(JWTService, handlers, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
	})

	scheduler := cron.NewScheduler(ctx)
	cron.NewStatsJobs(performanceSvc, statsCache != nil).RegisterJobs(scheduler, cfg.App.StatsWarmInterval)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server running", "addr", server.Addr, "data_source", cfg.Backend.DataSource)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
