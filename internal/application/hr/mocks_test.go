package hr

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tn-gestion/backend/internal/domain/hr"
)

// MockEmployeeRepository is a mock implementation of hr.EmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*hr.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hr.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindAll(ctx context.Context, filter hr.EmployeeFilter) ([]hr.Employee, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]hr.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Count(ctx context.Context, filter hr.EmployeeFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEmployeeRepository) Save(ctx context.Context, employee *hr.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmployeeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockPayslipRepository is a mock implementation of hr.PayslipRepository
type MockPayslipRepository struct {
	mock.Mock
}

func (m *MockPayslipRepository) FindByID(ctx context.Context, id uuid.UUID) (*hr.Payslip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hr.Payslip), args.Error(1)
}

func (m *MockPayslipRepository) FindAll(ctx context.Context, filter hr.PayslipFilter) ([]hr.Payslip, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]hr.Payslip), args.Error(1)
}

func (m *MockPayslipRepository) Count(ctx context.Context, filter hr.PayslipFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPayslipRepository) Save(ctx context.Context, payslip *hr.Payslip) error {
	args := m.Called(ctx, payslip)
	return args.Error(0)
}

func (m *MockPayslipRepository) ExistsForPeriod(ctx context.Context, employeeID uuid.UUID, period hr.Period) (bool, error) {
	args := m.Called(ctx, employeeID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayslipRepository) SumByPeriodRange(ctx context.Context, from, to time.Time) (hr.PayrollTotals, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(hr.PayrollTotals), args.Error(1)
}
