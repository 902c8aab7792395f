package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/performance"
	"github.com/dairy-admin/dairy-hr-backend/internal/handler/http/response"
)

type PerformanceHandler interface {
	EmployeeStats(w http.ResponseWriter, r *http.Request)
	WorkingDays(w http.ResponseWriter, r *http.Request)
}

type performanceHandlerImpl struct {
	performanceService performance.PerformanceService
	now                func() time.Time
}

func NewPerformanceHandler(performanceService performance.PerformanceService) PerformanceHandler {
	return &performanceHandlerImpl{
		performanceService: performanceService,
		now:                time.Now,
	}
}

// yearMonth reads year and month, defaulting to the current month.
func (h *performanceHandlerImpl) yearMonth(r *http.Request) (int, int) {
	now := h.now()
	return queryInt(r, "year", now.Year()), queryInt(r, "month", int(now.Month()))
}

// EmployeeStats implements PerformanceHandler.
func (h *performanceHandlerImpl) EmployeeStats(w http.ResponseWriter, r *http.Request) {
	year, month := h.yearMonth(r)

	stats, err := h.performanceService.EmployeeStats(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

// WorkingDays implements PerformanceHandler.
func (h *performanceHandlerImpl) WorkingDays(w http.ResponseWriter, r *http.Request) {
	year, month := h.yearMonth(r)

	var throughDay *int
	if v := r.URL.Query().Get("through_day"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "through_day must be a number", nil)
			return
		}
		throughDay = &day
	}

	days, err := h.performanceService.WorkingDays(r.Context(), year, month, throughDay)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, days)
}
