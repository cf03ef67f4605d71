package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/httpx"
)

// Categories and suppliers are reference data for items.

// listCategoriesHandler godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  httpx.Envelope{data=[]catalog.Category}
// @Router       /api/categories [get]
func listCategoriesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.ListCategories(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out, "")
	}
}

// createCategoryHandler godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        payload  body      catalog.Category  true  "Category"
// @Success      201      {object}  httpx.Envelope{data=catalog.Category}
// @Failure      400      {object}  httpx.HTTPError
// @Router       /api/categories [post]
func createCategoryHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.Category
		if !bindJSON(c, &in) {
			return
		}
		if err := repo.CreateCategory(c.Request.Context(), &in); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Category created: %s (ID: %d)", in.Name, in.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusCreated, in, "Category created successfully")
	}
}

// updateCategoryHandler godoc
// @Summary      Rename a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id       path      int               true  "Category ID"
// @Param        payload  body      catalog.Category  true  "Category"
// @Success      200      {object}  httpx.Envelope{data=catalog.Category}
// @Failure      404      {object}  httpx.HTTPError
// @Router       /api/categories/{id} [patch]
func updateCategoryHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var in catalog.Category
		if !bindJSON(c, &in) {
			return
		}
		in.ID = id
		if err := repo.UpdateCategory(c.Request.Context(), &in); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Category updated: %s (ID: %d)", in.Name, in.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusOK, in, "Category updated successfully")
	}
}

// deleteCategoryHandler godoc
// @Summary      Delete a category
// @Description  Categories still assigned to items cannot be deleted.
// @Tags         categories
// @Produce      json
// @Param        id   path      int  true  "Category ID"
// @Success      200  {object}  httpx.Envelope
// @Failure      404  {object}  httpx.HTTPError
// @Failure      409  {object}  httpx.HTTPError
// @Router       /api/categories/{id} [delete]
func deleteCategoryHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := repo.DeleteCategory(c.Request.Context(), id); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Category deleted: ID %d", id), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusOK, gin.H{"category_id": id}, "Category deleted successfully")
	}
}

// listSuppliersHandler godoc
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Success      200  {object}  httpx.Envelope{data=[]catalog.Supplier}
// @Router       /api/supplier [get]
func listSuppliersHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.ListSuppliers(c.Request.Context())
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out, "")
	}
}

// createSupplierHandler godoc
// @Summary      Create a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        payload  body      catalog.Supplier  true  "Supplier"
// @Success      201      {object}  httpx.Envelope{data=catalog.Supplier}
// @Failure      400      {object}  httpx.HTTPError
// @Router       /api/supplier [post]
func createSupplierHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.Supplier
		if !bindJSON(c, &in) {
			return
		}
		if err := repo.CreateSupplier(c.Request.Context(), &in); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Supplier created: %s (ID: %d)", in.Name, in.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusCreated, in, "Supplier created successfully")
	}
}

// updateSupplierHandler godoc
// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id       path      int               true  "Supplier ID"
// @Param        payload  body      catalog.Supplier  true  "Supplier"
// @Success      200      {object}  httpx.Envelope{data=catalog.Supplier}
// @Failure      404      {object}  httpx.HTTPError
// @Router       /api/supplier/{id} [patch]
func updateSupplierHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var in catalog.Supplier
		if !bindJSON(c, &in) {
			return
		}
		in.ID = id
		if err := repo.UpdateSupplier(c.Request.Context(), &in); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Supplier updated: %s (ID: %d)", in.Name, in.ID), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusOK, in, "Supplier updated successfully")
	}
}

// deleteSupplierHandler godoc
// @Summary      Delete a supplier
// @Tags         suppliers
// @Produce      json
// @Param        id   path      int  true  "Supplier ID"
// @Success      200  {object}  httpx.Envelope
// @Failure      404  {object}  httpx.HTTPError
// @Failure      409  {object}  httpx.HTTPError
// @Router       /api/supplier/{id} [delete]
func deleteSupplierHandler(repo catalog.Repository, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := repo.DeleteSupplier(c.Request.Context(), id); err != nil {
			httpx.Fail(c, err)
			return
		}
		sink.Record(fmt.Sprintf("Supplier deleted: ID %d", id), httpx.ActorFrom(c))
		httpx.OK(c, http.StatusOK, gin.H{"supplier_id": id}, "Supplier deleted successfully")
	}
}
