package employee

import "context"

// Reader is the read side consumed by the aggregation and payroll services.
// It is satisfied by both the postgres repository and the legacy REST client.
type Reader interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

type EmployeeRepository interface {
	Reader
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) error
}
