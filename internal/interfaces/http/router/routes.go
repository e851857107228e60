package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tn-gestion/backend/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers mounted by RegisterAPI
type Handlers struct {
	Customers *handler.PartnerHandler
	Suppliers *handler.PartnerHandler
	Products  *handler.ProductHandler
	Documents *handler.DocumentHandler
	Tools     *handler.ToolsHandler
	Expenses  *handler.ExpenseHandler
	HR        *handler.HRHandler
	Projects  *handler.ProjectHandler
	Reports   *handler.ReportHandler
	System    *handler.SystemHandler
}

// RegisterAPI registers the domain groups of the API on r. Setup must be
// called afterwards to mount them.
func RegisterAPI(r *Router, h Handlers) []*DomainGroup {
	partnerRoutes := NewDomainGroup("partner", "/partners")
	crud(partnerRoutes.Group("customers", "/customers"), h.Customers).
		POST("/:id/activate", h.Customers.Activate).
		POST("/:id/deactivate", h.Customers.Deactivate)
	crud(partnerRoutes.Group("suppliers", "/suppliers"), h.Suppliers).
		POST("/:id/activate", h.Suppliers.Activate).
		POST("/:id/deactivate", h.Suppliers.Deactivate)

	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	crud(catalogRoutes.Group("products", "/products"), h.Products).
		POST("/:id/activate", h.Products.Activate).
		POST("/:id/deactivate", h.Products.Deactivate)

	documentRoutes := NewDomainGroup("document", "/documents")
	crud(documentRoutes, h.Documents).
		POST("/:id/validate", h.Documents.Validate).
		POST("/:id/accept", h.Documents.Accept).
		POST("/:id/reject", h.Documents.Reject).
		POST("/:id/cancel", h.Documents.Cancel).
		POST("/:id/convert", h.Documents.Convert).
		POST("/:id/payments", h.Documents.RegisterPayment).
		POST("/:id/print", h.Documents.Print).
		GET("/:id/pdf", h.Documents.DownloadPDF).
		GET("/:id/preview", h.Documents.Preview)

	toolRoutes := NewDomainGroup("tools", "/tools").
		GET("/amount-in-words", h.Tools.AmountInWords).
		POST("/totals", h.Tools.Totals)

	financeRoutes := NewDomainGroup("finance", "/finance")
	crud(financeRoutes.Group("expenses", "/expenses"), h.Expenses).
		POST("/:id/submit", h.Expenses.Submit).
		POST("/:id/approve", h.Expenses.Approve).
		POST("/:id/reject", h.Expenses.Reject).
		POST("/:id/cancel", h.Expenses.Cancel).
		POST("/:id/pay", h.Expenses.Pay)

	hrRoutes := NewDomainGroup("hr", "/hr")
	hrRoutes.Group("employees", "/employees").
		GET("", h.HR.ListEmployees).
		POST("", h.HR.CreateEmployee).
		GET("/:id", h.HR.GetEmployee).
		PUT("/:id", h.HR.UpdateEmployee).
		DELETE("/:id", h.HR.DeleteEmployee)
	hrRoutes.Group("payslips", "/payslips").
		GET("", h.HR.ListPayslips).
		POST("", h.HR.CreatePayslip).
		GET("/rates", h.HR.GetRates).
		GET("/:id", h.HR.GetPayslip).
		POST("/:id/pay", h.HR.PayPayslip)

	projectRoutes := NewDomainGroup("project", "/projects")
	crud(projectRoutes, h.Projects).
		POST("/:id/start", h.Projects.Start).
		POST("/:id/complete", h.Projects.Complete).
		POST("/:id/cancel", h.Projects.Cancel)

	reportRoutes := NewDomainGroup("report", "/reports").
		GET("/sales-summary", h.Reports.SalesSummary).
		GET("/tva", h.Reports.TVADeclaration).
		GET("/profit-loss", h.Reports.ProfitAndLoss).
		GET("/projects/:id/profitability", h.Reports.ProjectProfitability)

	systemRoutes := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	groups := []*DomainGroup{
		partnerRoutes, catalogRoutes, documentRoutes, toolRoutes, financeRoutes,
		hrRoutes, projectRoutes, reportRoutes, systemRoutes,
	}
	for _, g := range groups {
		r.Register(g)
	}
	return groups
}

// RegisterRoot mounts the unversioned operational endpoints: /health and,
// when metrics is not nil, the Prometheus scrape endpoint
func RegisterRoot(engine *gin.Engine, system *handler.SystemHandler, metrics http.Handler, metricsPath string) {
	engine.GET("/health", system.Health)
	if metrics != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		engine.GET(metricsPath, gin.WrapH(metrics))
	}
}

// crudHandler is implemented by handlers exposing the five resource routes
type crudHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	GetByID(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func crud(g *DomainGroup, h crudHandler) *DomainGroup {
	return g.
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}
