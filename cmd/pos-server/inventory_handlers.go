package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/httpx"
)

// listItemsHandler godoc
// @Summary      List inventory items, most recently updated first
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  httpx.Envelope{data=[]catalog.Item}
// @Failure      500  {object}  httpx.HTTPError
// @Router       /api/inventory [get]
func listItemsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.ListItems(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, items, "")
	}
}

// createItemHandler godoc
// @Summary      Create an inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        payload  body      catalog.CreateItemRequest  true  "Item"
// @Success      201      {object}  httpx.Envelope{data=catalog.Item}
// @Failure      400      {object}  httpx.HTTPError
// @Failure      404      {object}  httpx.HTTPError
// @Router       /api/inventory [post]
func createItemHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateItemRequest
		if !bindJSON(c, &req) {
			return
		}
		it, err := req.Item()
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		if err := repo.CreateItem(c.Request.Context(), &it); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Item created: %s (ID: %d)", it.Description, it.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusCreated, it, "Item created successfully")
	}
}

// updateItemHandler godoc
// @Summary      Update an inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Item ID"
// @Param        payload  body      catalog.UpdateItemRequest  true  "Fields to change"
// @Success      200      {object}  httpx.Envelope{data=catalog.Item}
// @Failure      400      {object}  httpx.HTTPError
// @Failure      404      {object}  httpx.HTTPError
// @Router       /api/inventory/{id} [patch]
func updateItemHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req catalog.UpdateItemRequest
		if !bindJSON(c, &req) {
			return
		}
		it, err := repo.UpdateItem(c.Request.Context(), id, req)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Item updated: %s (ID: %d)", it.Description, it.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusOK, it, "Item updated successfully")
	}
}

// deleteItemHandler godoc
// @Summary      Delete an inventory item
// @Description  Items that appear on order lines cannot be deleted.
// @Tags         inventory
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  httpx.Envelope
// @Failure      404  {object}  httpx.HTTPError
// @Failure      409  {object}  httpx.HTTPError
// @Router       /api/inventory/{id} [delete]
func deleteItemHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		it, err := repo.DeleteItem(c.Request.Context(), id)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Item deleted: %s (ID: %d)", it.Description, it.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusOK, it, "Item deleted successfully")
	}
}

// restockHandler godoc
// @Summary      Restock an item
// @Description  Sets the quantity and raises the reorder threshold by one.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id       path      int                      true  "Item ID"
// @Param        payload  body      catalog.QuantityRequest  true  "New quantity"
// @Success      200      {object}  httpx.Envelope{data=catalog.Item}
// @Failure      400      {object}  httpx.HTTPError
// @Failure      404      {object}  httpx.HTTPError
// @Router       /api/update-quantity/{id} [patch]
func restockHandler(svc orderService) gin.HandlerFunc {
	return quantityHandler(svc.RestockItem, "Item quantity and reorder threshold updated successfully")
}

// setQuantityHandler godoc
// @Summary      Overwrite an item's quantity
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id       path      int                      true  "Item ID"
// @Param        payload  body      catalog.QuantityRequest  true  "New quantity"
// @Success      200      {object}  httpx.Envelope{data=catalog.Item}
// @Failure      400      {object}  httpx.HTTPError
// @Failure      404      {object}  httpx.HTTPError
// @Router       /api/quantity/{id} [patch]
func setQuantityHandler(svc orderService) gin.HandlerFunc {
	return quantityHandler(svc.SetItemQuantity, "Item quantity updated successfully")
}

func quantityHandler(
	write func(ctx context.Context, itemID int64, quantity int, actor string) (*catalog.Item, error),
	message string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req catalog.QuantityRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Quantity == nil {
			httpx.BadRequest(c, "quantity is required")
			return
		}
		it, err := write(c.Request.Context(), id, *req.Quantity, httpx.ActorFrom(c))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, it, message)
	}
}

// lowStockHandler godoc
// @Summary      Items at or under their reorder threshold
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  httpx.Envelope{data=[]report.LowStockItem}
// @Router       /api/inventory/low-stock [get]
func lowStockHandler(r reportReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := r.LowStock(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, items, "")
	}
}
