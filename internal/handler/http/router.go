package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/handler/http/middleware"
	"github.com/dairy-admin/dairy-hr-backend/internal/handler/http/response"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

const requestTimeout = 60 * time.Second

// Handlers groups the route handlers. A nil handler leaves its routes unmounted.
type Handlers struct {
	Employee    EmployeeHandler
	Attendance  AttendanceHandler
	Leave       LeaveHandler
	Performance PerformanceHandler
	Payroll     PayrollHandler
}

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			if h.Employee != nil {
				r.Route("/employees", func(r chi.Router) {
					r.Get("/", h.Employee.ListEmployees)
					r.Get("/{id}", h.Employee.GetEmployee)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Post("/", h.Employee.CreateEmployee)
						r.Put("/{id}", h.Employee.UpdateEmployee)
					})
				})
			}

			if h.Attendance != nil {
				r.Route("/attendance", func(r chi.Router) {
					r.Get("/", h.Attendance.ListAttendance)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Post("/", h.Attendance.CreateAttendance)
						r.Post("/import", h.Attendance.ImportRows)
						r.Post("/import/excel", h.Attendance.ImportWorkbook)
					})
				})
			}

			if h.Leave != nil {
				r.Route("/leave-requests", func(r chi.Router) {
					r.Get("/", h.Leave.ListRequests)
					r.Post("/", h.Leave.CreateRequest)
					r.Get("/{id}", h.Leave.GetRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Post("/{id}/approve", h.Leave.ApproveRequest)
						r.Post("/{id}/reject", h.Leave.RejectRequest)
					})
				})
			}

			if h.Performance != nil {
				r.Get("/performance/stats", h.Performance.EmployeeStats)
				r.Get("/working-days", h.Performance.WorkingDays)
			}

			if h.Payroll != nil {
				r.Route("/payroll/periods", func(r chi.Router) {
					r.Get("/", h.Payroll.ListPeriods)
					r.Get("/{id}", h.Payroll.GetPeriod)
					r.Get("/{id}/records", h.Payroll.ListRecords)
					r.Get("/{id}/summary", h.Payroll.Summary)
					r.Get("/{id}/export", h.Payroll.Export)

					// Payroll mutations are manager only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Post("/", h.Payroll.CreatePeriod)
						r.Delete("/{id}", h.Payroll.DeletePeriod)
						r.Post("/{id}/calculate", h.Payroll.Calculate)
						r.Post("/{id}/approve", h.Payroll.Approve)
					})
				})
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
