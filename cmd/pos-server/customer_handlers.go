package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
	"github.com/MikeMC777/pos-backoffice/internal/httpx"
)

// listCustomersHandler godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Success      200  {object}  httpx.Envelope{data=[]customer.Customer}
// @Router       /api/customer [get]
func listCustomersHandler(repo customer.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out, "")
	}
}

// createCustomerHandler godoc
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        payload  body      customer.Customer  true  "Customer"
// @Success      201      {object}  httpx.Envelope{data=customer.Customer}
// @Failure      400      {object}  httpx.HTTPError
// @Router       /api/customer [post]
func createCustomerHandler(repo customer.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in customer.Customer
		if !bindJSON(c, &in) {
			return
		}
		in.ID = 0
		if err := repo.Create(c.Request.Context(), &in); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Customer created: %s (ID: %d)", in.Name, in.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusCreated, in, "Customer created successfully")
	}
}

// updateCustomerHandler godoc
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id       path      int                             true  "Customer ID"
// @Param        payload  body      customer.UpdateRequest  true  "Fields to change"
// @Success      200      {object}  httpx.Envelope{data=customer.Customer}
// @Failure      400      {object}  httpx.HTTPError
// @Failure      404      {object}  httpx.HTTPError
// @Router       /api/customer/{id} [patch]
func updateCustomerHandler(repo customer.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req customer.UpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		cust, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		req.Apply(cust)
		if err := repo.Update(c.Request.Context(), cust); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Customer updated: %s (ID: %d)", cust.Name, cust.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusOK, cust, "Customer updated successfully")
	}
}

// deleteCustomerHandler godoc
// @Summary      Delete a customer
// @Description  Customers that still have orders cannot be deleted.
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  httpx.Envelope{data=customer.Customer}
// @Failure      404  {object}  httpx.HTTPError
// @Failure      409  {object}  httpx.HTTPError
// @Router       /api/customer/{id} [delete]
func deleteCustomerHandler(repo customer.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		cust, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Customer deleted: %s (ID: %d)", cust.Name, cust.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusOK, cust, "Customer deleted successfully")
	}
}
