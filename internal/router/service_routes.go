package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/handler"
)

// RegisterServiceRoutes wires the service request lifecycle, billing,
// audit log and dashboard endpoints under /api. The cacheable read
// middleware, when enabled, is applied by the caller at the group level.
func RegisterServiceRoutes(g *echo.Group, svc *handler.ServiceHandler, inv *handler.InvoiceHandler, hist *handler.HistoryHandler, dash *handler.DashboardHandler) {
	services := g.Group("/services")
	services.GET("", svc.List)
	services.GET("/:id", svc.Get)
	services.POST("", svc.Create)
	services.PUT("/:id", svc.Update)
	services.DELETE("/:id", svc.Delete)
	services.POST("/:id/record", svc.CreateRecord)
	services.PUT("/records/:id", svc.UpdateRecord)

	invoices := g.Group("/invoices")
	invoices.GET("", inv.List)
	invoices.GET("/:id", inv.Get)
	invoices.POST("", inv.Create)
	invoices.PUT("/:id", inv.Update)
	invoices.GET("/:id/payments", inv.ListPayments)
	invoices.POST("/:id/payments", inv.CreatePayment)

	history := g.Group("/history")
	history.GET("", hist.List)
	history.GET("/service/:id", hist.ByService)
	history.GET("/customer/:id", hist.ByCustomer)

	dashboard := g.Group("/dashboard")
	dashboard.GET("/stats", dash.Stats)
	dashboard.GET("/status-breakdown", dash.StatusBreakdown)
	dashboard.GET("/revenue", dash.MonthlyRevenue)
	dashboard.GET("/activity", dash.RecentActivity)
}
