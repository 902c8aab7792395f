package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/employee"
	"github.com/dairy-admin/dairy-hr-backend/internal/domain/leave"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

type LeaveServiceImpl struct {
	leaveRequestRepo    leave.LeaveRequestRepository
	employees           employee.Reader
	defaultLeaveBalance int
}

func NewLeaveService(leaveRequestRepo leave.LeaveRequestRepository, employees employee.Reader, defaultLeaveBalance int) leave.LeaveService {
	if defaultLeaveBalance <= 0 {
		defaultLeaveBalance = employee.DefaultLeaveBalance
	}
	return &LeaveServiceImpl{
		leaveRequestRepo:    leaveRequestRepo,
		employees:           employees,
		defaultLeaveBalance: defaultLeaveBalance,
	}
}

// actorFromContext returns the user_id claim of the caller, if any.
func actorFromContext(ctx context.Context) *string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil
	}
	return &userID
}

// CreateLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leaveType, _ := leave.ParseType(req.LeaveType)
	startDate, _ := validator.IsValidDate(req.StartDate)
	endDate, _ := validator.IsValidDate(req.EndDate)
	days := leave.InclusiveDays(startDate, endDate)

	// Annual leave is checked against the balance when the employee is known locally.
	if leaveType == leave.TypeAnnual && s.employees != nil {
		emp, err := s.employees.GetByID(ctx, req.EmployeeID)
		switch {
		case err == nil:
			if days > emp.LeaveBalanceOr(s.defaultLeaveBalance) {
				return leave.LeaveRequestResponse{}, leave.ErrInsufficientBalance
			}
			if req.EmployeeName == "" {
				req.EmployeeName = emp.DisplayName()
			}
		case !errors.Is(err, employee.ErrEmployeeNotFound):
			return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
		}
	}

	created, err := s.leaveRequestRepo.Create(ctx, leave.LeaveRequest{
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		LeaveType:    string(leaveType),
		StartDate:    startDate,
		EndDate:      endDate,
		DaysCount:    days,
		Reason:       req.Reason,
		Status:       leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	slog.Info("Created leave request", "request_id", created.ID, "employee_id", created.EmployeeID, "days", days)
	return leave.ToResponse(created), nil
}

// ApproveLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) ApproveLeaveRequest(ctx context.Context, requestID string) error {
	request, err := s.leaveRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != leave.StatusPending {
		return leave.ErrLeaveRequestAlreadyProcessed
	}

	if err := s.leaveRequestRepo.UpdateStatus(ctx, requestID, leave.StatusApproved, actorFromContext(ctx), nil); err != nil {
		return fmt.Errorf("failed to approve leave request: %w", err)
	}

	slog.Info("Approved leave request", "request_id", requestID)
	return nil
}

// RejectLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) RejectLeaveRequest(ctx context.Context, req leave.RejectRequestRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	request, err := s.leaveRequestRepo.GetByID(ctx, req.RequestID)
	if err != nil {
		return err
	}
	if request.Status != leave.StatusPending {
		return leave.ErrLeaveRequestAlreadyProcessed
	}

	reason := req.Reason
	if err := s.leaveRequestRepo.UpdateStatus(ctx, req.RequestID, leave.StatusRejected, actorFromContext(ctx), &reason); err != nil {
		return fmt.Errorf("failed to reject leave request: %w", err)
	}

	slog.Info("Rejected leave request", "request_id", req.RequestID)
	return nil
}

// GetLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := s.leaveRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.ToResponse(request), nil
}

// ListLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaveRequest(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := s.leaveRequestRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.ToResponse(r))
	}

	return leave.ListLeaveRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}
