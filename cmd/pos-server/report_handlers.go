package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-backoffice/internal/admin"
	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/httpx"
	"github.com/MikeMC777/pos-backoffice/internal/report"
)

// dashboardHandler godoc
// @Summary      Monthly dashboard totals and revenue per day
// @Tags         reports
// @Produce      json
// @Param        month  query     string  false  "YYYY-MM, defaults to the current month"
// @Success      200    {object}  httpx.Envelope{data=report.Dashboard}
// @Failure      400    {object}  httpx.HTTPError
// @Router       /api/dashboard [get]
func dashboardHandler(r reportReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		month, err := report.ParseMonth(c.Query("month"), time.Now().UTC())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		d, err := r.Dashboard(c.Request.Context(), month)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, d, "")
	}
}

// invoiceHandler godoc
// @Summary      Printable invoice for an order
// @Tags         reports
// @Produce      json
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  httpx.Envelope{data=report.Invoice}
// @Failure      404  {object}  httpx.HTTPError
// @Router       /api/invoice/{id} [get]
func invoiceHandler(r reportReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		inv, err := r.Invoice(c.Request.Context(), id)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, inv, "")
	}
}

// listSystemLogHandler godoc
// @Summary      System log, newest first
// @Tags         system-log
// @Produce      json
// @Success      200  {object}  httpx.Envelope{data=[]audit.Entry}
// @Router       /api/system-log [get]
func listSystemLogHandler(l auditLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := l.List(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out, "")
	}
}

// listAdminsHandler godoc
// @Summary      List admins
// @Tags         admins
// @Produce      json
// @Success      200  {object}  httpx.Envelope{data=[]admin.Admin}
// @Router       /api/admins [get]
func listAdminsHandler(svc adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.List(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out, "")
	}
}

// getAdminHandler godoc
// @Summary      Get an admin
// @Tags         admins
// @Produce      json
// @Param        id   path      int  true  "Admin ID"
// @Success      200  {object}  httpx.Envelope{data=admin.Admin}
// @Failure      404  {object}  httpx.HTTPError
// @Router       /api/admins/{id} [get]
func getAdminHandler(svc adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		a, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, a, "")
	}
}

// createAdminHandler godoc
// @Summary      Create an admin
// @Tags         admins
// @Accept       json
// @Produce      json
// @Param        payload  body      admin.CreateAdminRequest  true  "Admin"
// @Success      201      {object}  httpx.Envelope{data=admin.Admin}
// @Failure      400      {object}  httpx.HTTPError
// @Failure      409      {object}  httpx.HTTPError
// @Router       /api/admins [post]
func createAdminHandler(svc adminService, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.CreateAdminRequest
		if !bindJSON(c, &req) {
			return
		}
		a, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Admin created: %s (ID: %d)", a.DisplayName(), a.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusCreated, a, "Admin created successfully")
	}
}
