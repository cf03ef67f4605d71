package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/MikeMC777/pos-backoffice/internal/admin"
	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
	"github.com/MikeMC777/pos-backoffice/internal/httpx"
	"github.com/MikeMC777/pos-backoffice/internal/order"
	"github.com/MikeMC777/pos-backoffice/internal/report"
)

// orderService is the order engine as seen by the handlers.
type orderService interface {
	CreateOrder(ctx context.Context, in order.CreateOrderInput) (*order.Receipt, error)
	CreateOrderHeader(ctx context.Context, in order.HeaderInput) (*order.Order, error)
	AddLine(ctx context.Context, in order.LineInput) (*order.LineItem, error)
	UpdateStatus(ctx context.Context, id int64, status, actor string) (*order.Order, error)
	DeleteOrder(ctx context.Context, id int64, actor string) error
	ListOrders(ctx context.Context) ([]order.Order, error)
	GetOrder(ctx context.Context, id int64) (*order.Order, []order.LineItem, error)
	RestockItem(ctx context.Context, itemID int64, quantity int, actor string) (*catalog.Item, error)
	SetItemQuantity(ctx context.Context, itemID int64, quantity int, actor string) (*catalog.Item, error)
}

type adminService interface {
	Create(ctx context.Context, in admin.CreateAdminRequest) (*admin.Admin, error)
	Get(ctx context.Context, id int64) (*admin.Admin, error)
	List(ctx context.Context) ([]admin.Admin, error)
}

type auditLog interface {
	audit.Sink
	List(ctx context.Context) ([]audit.Entry, error)
}

type reportReader interface {
	Dashboard(ctx context.Context, month time.Time) (*report.Dashboard, error)
	Invoice(ctx context.Context, orderID int64) (*report.Invoice, error)
	LowStock(ctx context.Context) ([]report.LowStockItem, error)
}

type healthProbe interface {
	Serving(ctx context.Context) bool
}

type deps struct {
	orders    orderService
	catalog   catalog.Repository
	customers customer.Repository
	admins    adminService
	audit     auditLog
	reports   reportReader
	health    healthProbe
	log       *zap.Logger
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Actor(), httpx.Logger(d.log))

	r.GET("/healthz", healthzHandler(d.health))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	api.GET("/inventory", listItemsHandler(d.catalog))
	api.POST("/inventory", createItemHandler(d.catalog, d.audit))
	api.GET("/inventory/low-stock", lowStockHandler(d.reports))
	api.PATCH("/inventory/:id", updateItemHandler(d.catalog, d.audit))
	api.DELETE("/inventory/:id", deleteItemHandler(d.catalog, d.audit))
	api.PATCH("/update-quantity/:id", restockHandler(d.orders))
	api.PATCH("/quantity/:id", setQuantityHandler(d.orders))

	api.GET("/customer", listCustomersHandler(d.customers))
	api.POST("/customer", createCustomerHandler(d.customers, d.audit))
	api.PATCH("/customer/:id", updateCustomerHandler(d.customers, d.audit))
	api.DELETE("/customer/:id", deleteCustomerHandler(d.customers, d.audit))

	api.GET("/orders", listOrdersHandler(d.orders))
	api.POST("/orders", createOrderHandler(d.orders))
	api.GET("/orders/:id", getOrderHandler(d.orders))
	api.PATCH("/orders/:id", updateOrderStatusHandler(d.orders))
	api.DELETE("/orders/:id", deleteOrderHandler(d.orders))
	api.POST("/order_items", createOrderItemHandler(d.orders))

	api.GET("/categories", listCategoriesHandler(d.catalog))
	api.POST("/categories", createCategoryHandler(d.catalog, d.audit))
	api.PATCH("/categories/:id", updateCategoryHandler(d.catalog, d.audit))
	api.DELETE("/categories/:id", deleteCategoryHandler(d.catalog, d.audit))

	api.GET("/supplier", listSuppliersHandler(d.catalog))
	api.POST("/supplier", createSupplierHandler(d.catalog, d.audit))
	api.PATCH("/supplier/:id", updateSupplierHandler(d.catalog, d.audit))
	api.DELETE("/supplier/:id", deleteSupplierHandler(d.catalog, d.audit))

	api.GET("/system-log", listSystemLogHandler(d.audit))
	api.GET("/admins", listAdminsHandler(d.admins))
	api.GET("/admins/:id", getAdminHandler(d.admins))
	api.POST("/admins", createAdminHandler(d.admins, d.audit))

	api.GET("/dashboard", dashboardHandler(d.reports))
	api.GET("/invoice/:id", invoiceHandler(d.reports))

	return r
}

// healthzHandler godoc
// @Summary      Liveness and database readiness
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /healthz [get]
func healthzHandler(h healthProbe) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h != nil && !h.Serving(c.Request.Context()) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// pathID parses :id and answers 400 itself when it is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.BadRequest(c, "invalid id: "+c.Param("id"))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httpx.BadRequest(c, "invalid json: "+err.Error())
		return false
	}
	return true
}
