package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/attendance"
	"github.com/dairy-admin/dairy-hr-backend/internal/handler/http/response"
)

const maxWorkbookSize = 10 << 20

type AttendanceHandler interface {
	ListAttendance(w http.ResponseWriter, r *http.Request)
	CreateAttendance(w http.ResponseWriter, r *http.Request)
	ImportRows(w http.ResponseWriter, r *http.Request)
	ImportWorkbook(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// importSources lists the sources a JSON import may declare.
var importSources = map[string]attendance.Source{
	"":                                   attendance.SourceZKTecoImport,
	string(attendance.SourceZKTecoImport): attendance.SourceZKTecoImport,
	string(attendance.SourceFingerprint):  attendance.SourceFingerprint,
	string(attendance.SourceManual):       attendance.SourceManual,
}

type importRowsRequest struct {
	Source string                               `json:"source,omitempty"`
	Rows   []attendance.CreateAttendanceRequest `json:"rows"`
}

// ListAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListAttendance(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		EmployeeID: queryString(r, "employee_id"),
		DateFrom:   queryString(r, "date_from"),
		DateTo:     queryString(r, "date_to"),
		Status:     queryString(r, "status"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 50),
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Paginated(w, result.Records, result.Page, result.Limit, result.TotalCount)
}

// CreateAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateAttendance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.attendanceService.CreateAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance recorded successfully", created)
}

// ImportRows implements AttendanceHandler.
func (h *attendanceHandlerImpl) ImportRows(w http.ResponseWriter, r *http.Request) {
	var req importRowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ImportRows decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	source, ok := importSources[req.Source]
	if !ok {
		response.BadRequest(w, "Unknown import source", map[string]string{
			"source": "source must be one of: zkteco_import, fingerprint, manual",
		})
		return
	}

	result, err := h.attendanceService.ImportRows(r.Context(), req.Rows, source)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance import finished", result)
}

// ImportWorkbook implements AttendanceHandler.
func (h *attendanceHandlerImpl) ImportWorkbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWorkbookSize)
	if err := r.ParseMultipartForm(maxWorkbookSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Field 'file' is required", nil)
		return
	}
	defer file.Close()

	result, err := h.attendanceService.ImportWorkbook(r.Context(), file)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance import finished", result)
}
