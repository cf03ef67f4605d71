package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-backoffice/internal/httpx"
	"github.com/MikeMC777/pos-backoffice/internal/order"
)

// createOrderHandler godoc
// @Summary      Create an order
// @Description  With items: checks stock, prices the cart and stores the order, its lines and the stock decrements atomically. Without items: stores a manually entered header.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                    false  "Deduplicates retried checkouts"
// @Param        X-Actor          header  string                    false  "Acting user for the audit log"
// @Param        payload          body    order.CreateOrderRequest  true   "Order"
// @Success      201  {object}  httpx.Envelope
// @Success      200  {object}  httpx.Envelope  "Replayed Idempotency-Key"
// @Failure      400  {object}  httpx.HTTPError
// @Failure      404  {object}  httpx.HTTPError
// @Failure      409  {object}  httpx.HTTPError
// @Failure      422  {object}  httpx.HTTPError
// @Failure      500  {object}  httpx.HTTPError
// @Router       /api/orders [post]
func createOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if !bindJSON(c, &req) {
			return
		}
		actor := httpx.ActorFrom(c)

		if !req.IsCart() {
			in, err := req.HeaderInput(actor)
			if err != nil {
				httpx.Fail(c, err)
				return
			}
			o, err := svc.CreateOrderHeader(c.Request.Context(), in)
			if err != nil {
				httpx.Fail(c, err)
				return
			}
			httpx.OK(c, http.StatusCreated, o, "Order created successfully")
			return
		}

		in, err := req.CartInput(actor, c.GetHeader("Idempotency-Key"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		rc, err := svc.CreateOrder(c.Request.Context(), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if rc.Replayed {
			c.Header("Idempotent-Replayed", "true")
			httpx.OK(c, http.StatusOK, rc, "Order already created for this Idempotency-Key")
			return
		}
		httpx.OK(c, http.StatusCreated, rc, "Order created successfully")
	}
}

// listOrdersHandler godoc
// @Summary      List orders, newest order date first
// @Tags         orders
// @Produce      json
// @Success      200  {object}  httpx.Envelope{data=[]order.Order}
// @Failure      500  {object}  httpx.HTTPError
// @Router       /api/orders [get]
func listOrdersHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListOrders(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out, "")
	}
}

// getOrderHandler godoc
// @Summary      Get an order with its lines
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  httpx.Envelope{data=order.Receipt}
// @Failure      400  {object}  httpx.HTTPError
// @Failure      404  {object}  httpx.HTTPError
// @Router       /api/orders/{id} [get]
func getOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		o, lines, err := svc.GetOrder(c.Request.Context(), id)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, order.Receipt{Order: o, Lines: lines}, "")
	}
}

// updateOrderStatusHandler godoc
// @Summary      Change the order status
// @Description  Cancelling sets the total to 0. Stock is never returned.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path  int                        true  "Order ID"
// @Param        payload  body  order.UpdateStatusRequest  true  "New status"
// @Success      200  {object}  httpx.Envelope{data=order.Order}
// @Failure      400  {object}  httpx.HTTPError
// @Failure      404  {object}  httpx.HTTPError
// @Router       /api/orders/{id} [patch]
func updateOrderStatusHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req order.UpdateStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), id, req.Status, httpx.ActorFrom(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, o, "Order status updated successfully")
	}
}

// deleteOrderHandler godoc
// @Summary      Delete an order and its lines
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  httpx.Envelope
// @Failure      404  {object}  httpx.HTTPError
// @Router       /api/orders/{id} [delete]
func deleteOrderHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.DeleteOrder(c.Request.Context(), id, httpx.ActorFrom(c)); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"order_id": id}, "Order deleted successfully")
	}
}

// createOrderItemHandler godoc
// @Summary      Add a manually entered order line
// @Description  The subtotal is recomputed from quantity and unit price. Stock is not touched.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        payload  body  order.CreateOrderItemRequest  true  "Line"
// @Success      201  {object}  httpx.Envelope{data=order.LineItem}
// @Failure      400  {object}  httpx.HTTPError
// @Failure      404  {object}  httpx.HTTPError
// @Router       /api/order_items [post]
func createOrderItemHandler(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderItemRequest
		if !bindJSON(c, &req) {
			return
		}
		in, err := req.LineInput(httpx.ActorFrom(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		l, err := svc.AddLine(c.Request.Context(), in)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, l, "Order item created successfully")
	}
}
