package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/domain/payroll"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const periodColumns = `
	id, name, start_date, end_date, total_days, status,
	calculated_at, approved_at, approved_by, created_at, updated_at`

const recordColumns = `
	id, period_id, employee_id, COALESCE(employee_name, ''), COALESCE(employee_code, ''), COALESCE(department, ''),
	working_days, absent_days, annual_leave, sick_leave, emergency_leave, unpaid_leave, total_pay_days,
	basic_salary, deductions, net_salary, created_at`

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func scanPeriod(row pgx.Row) (payroll.PayrollPeriod, error) {
	var p payroll.PayrollPeriod
	err := row.Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.TotalDays, &p.Status,
		&p.CalculatedAt, &p.ApprovedAt, &p.ApprovedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// ========== PERIODS ==========

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (name, start_date, end_date, total_days, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + periodColumns

	created, err := scanPeriod(q.QueryRow(ctx, query,
		period.Name, period.StartDate, period.EndDate, period.TotalDays, period.Status,
	))
	if err != nil {
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}
	return created, nil
}

func (r *payrollRepository) GetPeriod(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id::text = $1`

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil && *filter.Status != "" {
		whereClause += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payroll_periods WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM payroll_periods WHERE %s ORDER BY start_date DESC LIMIT $%d OFFSET $%d`,
		periodColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayrollPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, 0, err
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return periods, total, nil
}

func (r *payrollRepository) HasOverlap(ctx context.Context, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payroll_periods WHERE start_date <= $2 AND end_date >= $1)`,
		start, end,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check payroll period overlap: %w", err)
	}
	return exists, nil
}

// lockPeriodStatus reads the period status and holds a row lock until the transaction ends.
func lockPeriodStatus(ctx context.Context, q database.Querier, periodID string) (payroll.PeriodStatus, error) {
	var status payroll.PeriodStatus
	err := q.QueryRow(ctx, `SELECT status FROM payroll_periods WHERE id::text = $1 FOR UPDATE`, periodID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", payroll.ErrPeriodNotFound
		}
		return "", fmt.Errorf("failed to lock payroll period: %w", err)
	}
	return status, nil
}

// ========== CALCULATION ==========

func (r *payrollRepository) ReplaceRecords(ctx context.Context, periodID string, records []payroll.PayrollRecord, calculatedAt time.Time) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		status, err := lockPeriodStatus(txCtx, q, periodID)
		if err != nil {
			return err
		}
		if status == payroll.PeriodStatusApproved {
			return payroll.ErrPeriodLocked
		}

		if _, err := q.Exec(txCtx, `DELETE FROM payroll_records WHERE period_id::text = $1`, periodID); err != nil {
			return fmt.Errorf("failed to clear payroll records: %w", err)
		}

		if len(records) > 0 {
			const insert = `
				INSERT INTO payroll_records (
					period_id, employee_id, employee_name, employee_code, department,
					working_days, absent_days, annual_leave, sick_leave, emergency_leave, unpaid_leave, total_pay_days,
					basic_salary, deductions, net_salary
				) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

			batch := &pgx.Batch{}
			for _, rec := range records {
				batch.Queue(insert,
					periodID, rec.EmployeeID, nullIfEmpty(rec.EmployeeName), nullIfEmpty(rec.EmployeeCode), nullIfEmpty(rec.Department),
					rec.WorkingDays, rec.AbsentDays, rec.AnnualLeave, rec.SickLeave, rec.EmergencyLeave, rec.UnpaidLeave, rec.TotalPayDays,
					rec.BasicSalary, rec.Deductions, rec.NetSalary,
				)
			}
			results := q.SendBatch(txCtx, batch)
			for range records {
				if _, err := results.Exec(); err != nil {
					results.Close()
					return fmt.Errorf("failed to insert payroll record: %w", err)
				}
			}
			if err := results.Close(); err != nil {
				return fmt.Errorf("failed to insert payroll records: %w", err)
			}
		}

		_, err = q.Exec(txCtx, `
			UPDATE payroll_periods
			SET status = $1, calculated_at = $2, updated_at = NOW()
			WHERE id::text = $3`,
			payroll.PeriodStatusCalculated, calculatedAt, periodID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark payroll period calculated: %w", err)
		}
		return nil
	})
}

func (r *payrollRepository) Approve(ctx context.Context, periodID string, approvedBy *string, approvedAt time.Time) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		status, err := lockPeriodStatus(txCtx, q, periodID)
		if err != nil {
			return err
		}
		switch status {
		case payroll.PeriodStatusApproved:
			return payroll.ErrPeriodLocked
		case payroll.PeriodStatusDraft:
			return payroll.ErrPeriodNotCalculated
		}

		_, err = q.Exec(txCtx, `
			UPDATE payroll_periods
			SET status = $1, approved_by = $2, approved_at = $3, updated_at = NOW()
			WHERE id::text = $4`,
			payroll.PeriodStatusApproved, approvedBy, approvedAt, periodID,
		)
		if err != nil {
			return fmt.Errorf("failed to approve payroll period: %w", err)
		}
		return nil
	})
}

func (r *payrollRepository) DeletePeriod(ctx context.Context, periodID string) error {
	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		status, err := lockPeriodStatus(txCtx, q, periodID)
		if err != nil {
			return err
		}
		if status == payroll.PeriodStatusApproved {
			return payroll.ErrPeriodLocked
		}

		// records go with the period via ON DELETE CASCADE
		if _, err := q.Exec(txCtx, `DELETE FROM payroll_periods WHERE id::text = $1`, periodID); err != nil {
			return fmt.Errorf("failed to delete payroll period: %w", err)
		}
		return nil
	})
}

// ========== RECORDS ==========

func (r *payrollRepository) ListRecords(ctx context.Context, periodID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `
		FROM payroll_records
		WHERE period_id::text = $1
		ORDER BY employee_name NULLS LAST, employee_id`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		var rec payroll.PayrollRecord
		if err := rows.Scan(
			&rec.ID, &rec.PeriodID, &rec.EmployeeID, &rec.EmployeeName, &rec.EmployeeCode, &rec.Department,
			&rec.WorkingDays, &rec.AbsentDays, &rec.AnnualLeave, &rec.SickLeave, &rec.EmergencyLeave, &rec.UnpaidLeave, &rec.TotalPayDays,
			&rec.BasicSalary, &rec.Deductions, &rec.NetSalary, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
