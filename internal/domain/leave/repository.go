package leave

import (
	"context"
	"time"
)

// Reader is the read side used by payroll.
type Reader interface {
	// ListApproved returns approved requests overlapping [from, to].
	ListApproved(ctx context.Context, from, to time.Time) ([]LeaveRequest, error)
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Reader
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	// UpdateStatus only transitions pending requests; anything else is ErrLeaveRequestAlreadyProcessed.
	UpdateStatus(ctx context.Context, id string, status Status, actor *string, reason *string) error
}
