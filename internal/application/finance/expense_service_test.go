package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/domain/finance"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/project"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockExpenseRepository is a mock implementation of finance.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Count(ctx context.Context, filter finance.ExpenseFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) NextNumber(ctx context.Context, t time.Time) (string, error) {
	args := m.Called(ctx, t)
	return args.String(0), args.Error(1)
}

func (m *MockExpenseRepository) SumApprovedByCategory(ctx context.Context, from, to time.Time) ([]finance.CategoryTotal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]finance.CategoryTotal), args.Error(1)
}

func (m *MockExpenseRepository) SumApprovedByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPartnerRepository is a mock implementation of partner.Repository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindByCode(ctx context.Context, kind partner.Kind, code string) (*partner.Partner, error) {
	args := m.Called(ctx, kind, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindAll(ctx context.Context, filter partner.Filter) ([]partner.Partner, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) Count(ctx context.Context, filter partner.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPartnerRepository) ExistsByCode(ctx context.Context, kind partner.Kind, code string) (bool, error) {
	args := m.Called(ctx, kind, code)
	return args.Bool(0), args.Error(1)
}

// MockProjectRepository is a mock implementation of project.Repository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, filter project.Filter) ([]project.Project, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *MockProjectRepository) Count(ctx context.Context, filter project.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	repo     *MockExpenseRepository
	partners *MockPartnerRepository
	projects *MockProjectRepository
	logs     *observer.ObservedLogs
	svc      *ExpenseService
}

func newTestEnv() *testEnv {
	core, logs := observer.New(zap.InfoLevel)
	env := &testEnv{
		repo:     new(MockExpenseRepository),
		partners: new(MockPartnerRepository),
		projects: new(MockProjectRepository),
		logs:     logs,
	}
	env.svc = NewExpenseService(env.repo, env.partners, env.projects, zap.New(core))
	env.svc.now = func() time.Time { return fixedNow }
	return env
}

func newTestExpense(t *testing.T) *finance.Expense {
	t.Helper()
	e, err := finance.NewExpense("DEP-202603-00001", finance.ExpenseCategoryRent, finance.ExpenseAmounts{
		AmountHT:  decimal.NewFromInt(1200),
		TVAAmount: decimal.NewFromInt(228),
	}, "Loyer mars", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return e
}

func TestExpenseService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates draft expense with links", func(t *testing.T) {
		env := newTestEnv()
		supplier, err := partner.NewSupplier("F001", "STEG", "")
		require.NoError(t, err)
		projectID := uuid.New()

		env.partners.On("FindByID", ctx, supplier.ID).Return(supplier, nil)
		env.projects.On("FindByID", ctx, projectID).Return(&project.Project{}, nil)
		env.repo.On("NextNumber", ctx, fixedNow).Return("DEP-202603-00004", nil)
		env.repo.On("Save", ctx, mock.AnythingOfType("*finance.Expense")).Return(nil)

		resp, err := env.svc.Create(ctx, CreateExpenseRequest{
			Category:    "UTILITIES",
			AmountHT:    decimal.RequireFromString("150.5"),
			TVAAmount:   decimal.RequireFromString("28.595"),
			Description: "Facture électricité",
			IncurredAt:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			SupplierID:  &supplier.ID,
			ProjectID:   &projectID,
			Remark:      "compteur atelier",
		})
		require.NoError(t, err)
		assert.Equal(t, "DEP-202603-00004", resp.Number)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Equal(t, "UNPAID", resp.PaymentStatus)
		assert.Equal(t, "179.095", resp.AmountTTC.StringFixed(3))
		assert.Equal(t, &supplier.ID, resp.SupplierID)
		assert.Equal(t, &projectID, resp.ProjectID)
		assert.Equal(t, "compteur atelier", resp.Remark)
		assert.Equal(t, 1, env.logs.FilterMessage("expense created").Len())
		env.repo.AssertExpectations(t)
	})

	t.Run("rejects customer as supplier", func(t *testing.T) {
		env := newTestEnv()
		customer, err := partner.NewCustomer("C001", "Client", "")
		require.NoError(t, err)

		env.partners.On("FindByID", ctx, customer.ID).Return(customer, nil)

		_, err = env.svc.Create(ctx, CreateExpenseRequest{
			Category:    "OTHER",
			AmountHT:    decimal.NewFromInt(10),
			Description: "x",
			IncurredAt:  fixedNow,
			SupplierID:  &customer.ID,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		env.repo.AssertNotCalled(t, "NextNumber", mock.Anything, mock.Anything)
	})

	t.Run("unknown project", func(t *testing.T) {
		env := newTestEnv()
		projectID := uuid.New()

		env.projects.On("FindByID", ctx, projectID).Return(nil, shared.ErrNotFound)

		_, err := env.svc.Create(ctx, CreateExpenseRequest{
			Category:    "OTHER",
			AmountHT:    decimal.NewFromInt(10),
			Description: "x",
			IncurredAt:  fixedNow,
			ProjectID:   &projectID,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("non positive amount", func(t *testing.T) {
		env := newTestEnv()
		env.repo.On("NextNumber", ctx, fixedNow).Return("DEP-202603-00001", nil)

		_, err := env.svc.Create(ctx, CreateExpenseRequest{
			Category:    "OTHER",
			AmountHT:    decimal.Zero,
			Description: "x",
			IncurredAt:  fixedNow,
		})
		require.Error(t, err)
		env.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("numbering failure is wrapped", func(t *testing.T) {
		env := newTestEnv()
		env.repo.On("NextNumber", ctx, fixedNow).Return("", errors.New("db down"))

		_, err := env.svc.Create(ctx, CreateExpenseRequest{
			Category:    "OTHER",
			AmountHT:    decimal.NewFromInt(1),
			Description: "x",
			IncurredAt:  fixedNow,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to allocate expense number")
	})
}

func TestExpenseService_Update(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	e := newTestExpense(t)

	env.repo.On("FindByID", ctx, e.ID).Return(e, nil)
	env.repo.On("Save", ctx, e).Return(nil)

	amount := decimal.NewFromInt(1300)
	resp, err := env.svc.Update(ctx, e.ID, UpdateExpenseRequest{AmountHT: &amount})
	require.NoError(t, err)
	assert.Equal(t, "1528.000", resp.AmountTTC.StringFixed(3))
	assert.Equal(t, "RENT", resp.Category)
	assert.Equal(t, "Loyer mars", resp.Description)
	assert.Equal(t, 2, resp.Version)

	_, err = env.svc.Submit(ctx, e.ID)
	require.NoError(t, err)
	_, err = env.svc.Update(ctx, e.ID, UpdateExpenseRequest{AmountHT: &amount})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestExpenseService_Workflow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	e := newTestExpense(t)

	env.repo.On("FindByID", ctx, e.ID).Return(e, nil)
	env.repo.On("Save", ctx, e).Return(nil)

	_, err := env.svc.Pay(ctx, e.ID, PayExpenseRequest{Method: "CASH"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	resp, err := env.svc.Submit(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.NotNil(t, resp.SubmittedAt)

	resp, err = env.svc.Approve(ctx, e.ID, ApproveExpenseRequest{Remark: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)
	assert.Equal(t, "ok", resp.ApprovalRemark)

	resp, err = env.svc.Pay(ctx, e.ID, PayExpenseRequest{Method: "TRANSFER"})
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.PaymentStatus)
	require.NotNil(t, resp.PaymentMethod)
	assert.Equal(t, "TRANSFER", *resp.PaymentMethod)

	_, err = env.svc.Pay(ctx, e.ID, PayExpenseRequest{Method: "TRANSFER"})
	require.Error(t, err)

	assert.Equal(t, 1, env.logs.FilterMessage("expense approved").Len())
	assert.Equal(t, 1, env.logs.FilterMessage("expense paid").Len())
}

func TestExpenseService_RejectAndCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("reject requires reason", func(t *testing.T) {
		env := newTestEnv()
		e := newTestExpense(t)
		require.NoError(t, e.Submit())

		env.repo.On("FindByID", ctx, e.ID).Return(e, nil)
		env.repo.On("Save", ctx, e).Return(nil)

		_, err := env.svc.Reject(ctx, e.ID, ReasonRequest{Reason: " "})
		require.Error(t, err)

		resp, err := env.svc.Reject(ctx, e.ID, ReasonRequest{Reason: "justificatif manquant"})
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, "justificatif manquant", resp.RejectionReason)
	})

	t.Run("cancel draft", func(t *testing.T) {
		env := newTestEnv()
		e := newTestExpense(t)

		env.repo.On("FindByID", ctx, e.ID).Return(e, nil)
		env.repo.On("Save", ctx, e).Return(nil)

		resp, err := env.svc.Cancel(ctx, e.ID, ReasonRequest{Reason: "doublon"})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, "doublon", resp.CancelReason)
	})
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("draft", func(t *testing.T) {
		env := newTestEnv()
		e := newTestExpense(t)
		env.repo.On("FindByID", ctx, e.ID).Return(e, nil)
		env.repo.On("Delete", ctx, e.ID).Return(nil)

		require.NoError(t, env.svc.Delete(ctx, e.ID))
		env.repo.AssertExpectations(t)
	})

	t.Run("submitted", func(t *testing.T) {
		env := newTestEnv()
		e := newTestExpense(t)
		require.NoError(t, e.Submit())
		env.repo.On("FindByID", ctx, e.ID).Return(e, nil)

		assert.ErrorIs(t, env.svc.Delete(ctx, e.ID), shared.ErrInvalidState)
		env.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		env := newTestEnv()
		id := uuid.New()
		env.repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, env.svc.Delete(ctx, id), shared.ErrNotFound)
	})
}

func TestExpenseService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("maps filter", func(t *testing.T) {
		env := newTestEnv()
		e := newTestExpense(t)
		projectID := uuid.New()

		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC)
		expected := finance.ExpenseFilter{
			Filter:    shared.Filter{Page: 1, PageSize: 20, OrderBy: "incurred_at", OrderDir: "desc"},
			Category:  finance.ExpenseCategoryRent,
			Status:    finance.ExpenseStatusDraft,
			ProjectID: &projectID,
			From:      &from,
			To:        &to,
		}
		env.repo.On("FindAll", ctx, expected).Return([]finance.Expense{*e}, nil)
		env.repo.On("Count", ctx, expected).Return(int64(1), nil)

		items, total, err := env.svc.List(ctx, ExpenseListFilter{
			Category:  "RENT",
			Status:    "DRAFT",
			ProjectID: projectID.String(),
			From:      "2026-03-01",
			To:        "2026-03-31",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "Loyer", items[0].CategoryName)
	})

	t.Run("inverted range", func(t *testing.T) {
		env := newTestEnv()
		_, _, err := env.svc.List(ctx, ExpenseListFilter{From: "2026-04-01", To: "2026-03-01"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("bad supplier id", func(t *testing.T) {
		env := newTestEnv()
		_, _, err := env.svc.List(ctx, ExpenseListFilter{SupplierID: "nope"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
