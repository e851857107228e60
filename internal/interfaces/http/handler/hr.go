package handler

import (
	"github.com/gin-gonic/gin"
	hrapp "github.com/tn-gestion/backend/internal/application/hr"
)

// HRHandler handles employee and payslip endpoints
type HRHandler struct {
	BaseHandler
	employeeService *hrapp.EmployeeService
	payslipService  *hrapp.PayslipService
}

// NewHRHandler creates a new HRHandler
func NewHRHandler(employeeService *hrapp.EmployeeService, payslipService *hrapp.PayslipService) *HRHandler {
	return &HRHandler{
		employeeService: employeeService,
		payslipService:  payslipService,
	}
}

// =============================================================================
// Employees
// =============================================================================

// CreateEmployee creates a new employee
// POST /hr/employees
func (h *HRHandler) CreateEmployee(c *gin.Context) {
	var req hrapp.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	employee, err := h.employeeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, employee)
}

// GetEmployee retrieves an employee by ID
func (h *HRHandler) GetEmployee(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	employee, err := h.employeeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, employee)
}

// ListEmployees retrieves a paginated list of employees
func (h *HRHandler) ListEmployees(c *gin.Context) {
	var filter hrapp.EmployeeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	employees, total, err := h.employeeService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, employees, total, filter.Page, filter.PageSize)
}

// UpdateEmployee updates an employee
func (h *HRHandler) UpdateEmployee(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req hrapp.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	employee, err := h.employeeService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, employee)
}

// DeleteEmployee deletes an employee without payslips
func (h *HRHandler) DeleteEmployee(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.employeeService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// =============================================================================
// Payslips
// =============================================================================

// GetRates returns the contribution rates applied to payslips
// GET /hr/payslips/rates
func (h *HRHandler) GetRates(c *gin.Context) {
	rates := h.payslipService.Rates()
	h.Success(c, gin.H{
		"cnss_employee_rate": rates.CNSSEmployee,
		"cnss_employer_rate": rates.CNSSEmployer,
	})
}

// CreatePayslip computes and saves the payslip of an employee for a month
// POST /hr/payslips
func (h *HRHandler) CreatePayslip(c *gin.Context) {
	var req hrapp.CreatePayslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	payslip, err := h.payslipService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payslip)
}

// GetPayslip retrieves a payslip by ID
func (h *HRHandler) GetPayslip(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	payslip, err := h.payslipService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payslip)
}

// ListPayslips retrieves a paginated list of payslips
func (h *HRHandler) ListPayslips(c *gin.Context) {
	var filter hrapp.PayslipListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	payslips, total, err := h.payslipService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, payslips, total, filter.Page, filter.PageSize)
}

// PayPayslip marks a payslip as paid
// POST /hr/payslips/:id/pay
func (h *HRHandler) PayPayslip(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req hrapp.PayPayslipRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	payslip, err := h.payslipService.Pay(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payslip)
}
