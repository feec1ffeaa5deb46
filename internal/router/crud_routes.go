package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auto-service-desk/internal/handler"
)

// RegisterCRUDRoutes wires the supporting resources under /api: customers,
// vehicles and their model catalog, employees and technicians, the parts
// inventory, insurance policies and feedback.
func RegisterCRUDRoutes(g *echo.Group, cust *handler.CustomerHandler, veh *handler.VehicleHandler, emp *handler.EmployeeHandler, inv *handler.InventoryHandler, ins *handler.InsuranceHandler, fb *handler.FeedbackHandler) {
	customers := g.Group("/customers")
	customers.GET("", cust.List)
	customers.GET("/:id", cust.Get)
	customers.POST("", cust.Create)
	customers.PUT("/:id", cust.Update)
	customers.DELETE("/:id", cust.Delete)

	vehicles := g.Group("/vehicles")
	// static segments must come before /:id so echo does not treat
	// "models" as an identifier
	vehicles.GET("/models", veh.ListModels)
	vehicles.POST("/models", veh.CreateModel)
	vehicles.GET("", veh.List)
	vehicles.GET("/:id", veh.Get)
	vehicles.POST("", veh.Create)
	vehicles.PUT("/:id", veh.Update)
	vehicles.DELETE("/:id", veh.Delete)

	employees := g.Group("/employees")
	employees.GET("/technicians", emp.ListTechnicians)
	employees.POST("/technicians", emp.CreateTechnician)
	employees.GET("", emp.List)
	employees.GET("/:id", emp.Get)
	employees.POST("", emp.Create)
	employees.PUT("/:id", emp.Update)
	employees.DELETE("/:id", emp.Delete)

	inventory := g.Group("/inventory")
	inventory.GET("/parts", inv.ListParts)
	inventory.GET("/parts/:id", inv.GetPart)
	inventory.POST("/parts", inv.CreatePart)
	inventory.PUT("/parts/:id", inv.UpdatePart)
	inventory.DELETE("/parts/:id", inv.DeletePart)
	inventory.PUT("/stock", inv.SetStock)
	inventory.GET("/low-stock", inv.LowStock)
	inventory.GET("/suppliers", inv.ListSuppliers)
	inventory.POST("/suppliers", inv.CreateSupplier)

	insurance := g.Group("/insurance")
	insurance.GET("", ins.List)
	insurance.GET("/:id", ins.Get)
	insurance.POST("", ins.Create)
	insurance.PUT("/:id", ins.Update)
	insurance.DELETE("/:id", ins.Delete)

	feedback := g.Group("/feedback")
	feedback.GET("", fb.List)
	feedback.POST("", fb.Create)
	feedback.DELETE("/:id", fb.Delete)
}
