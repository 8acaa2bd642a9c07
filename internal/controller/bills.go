package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-bills/internal/models"
	"todo-bills/internal/repository"
	"todo-bills/internal/validation"
)

// ListBills returns the caller's bills, unpaid first, then by due date, then newest.
func (h *Handlers) ListBills(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	h.serveList(c, models.KindBill, uid, "Failed to fetch bills", func(ctx context.Context) (any, error) {
		return h.Bills.List(ctx, uid)
	})
}

// CreateBill validates the body and stores an unpaid bill owned by the caller.
func (h *Handlers) CreateBill(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := owner(c)
	if !ok {
		return
	}
	var body validation.BillCreate
	if !bindJSON(c, &body) {
		return
	}
	in, err := h.Validator.Bill(body)
	if ve, ok := validation.AsErrors(err); ok {
		badRequest(c, ve)
		return
	}
	bill, err := h.Bills.Create(ctx, uid, in)
	if err != nil {
		internalError(c, "Failed to create bill", err)
		return
	}
	h.changed(ctx, models.KindBill, models.ActionCreate, bill.ID, uid)
	c.JSON(http.StatusCreated, bill)
}

// ownedBill runs only with BillOwnershipCheck; it mirrors ownedTodo.
func (h *Handlers) ownedBill(c *gin.Context, uid, id, failMsg string) bool {
	bill, err := h.Bills.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		notFound(c, "Bill")
		return false
	case err != nil:
		internalError(c, failMsg, err)
		return false
	case bill.UserID != uid:
		forbidden(c)
		return false
	}
	return true
}

// missingBill answers for a bill that vanished: 404 when ownership is
// checked, otherwise the generic failure the unchecked path has always given.
func (h *Handlers) missingBill(c *gin.Context, failMsg string, err error) {
	if h.BillOwnershipCheck {
		notFound(c, "Bill")
		return
	}
	internalError(c, failMsg, err)
}

// UpdateBill applies a partial update. A body with only paid (and optionally
// paidDate) is a toggle: paying stamps paidDate, unpaying clears it.
func (h *Handlers) UpdateBill(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := owner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var body validation.BillUpdate
	if !bindJSON(c, &body) {
		return
	}
	patch, err := h.Validator.BillPatch(body)
	if ve, ok := validation.AsErrors(err); ok {
		badRequest(c, ve)
		return
	}
	if h.BillOwnershipCheck && !h.ownedBill(c, uid, id, "Failed to update bill") {
		return
	}
	bill, err := h.Bills.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		h.missingBill(c, "Failed to update bill", err)
		return
	}
	if err != nil {
		internalError(c, "Failed to update bill", err)
		return
	}
	h.changed(ctx, models.KindBill, models.ActionUpdate, id, bill.UserID)
	c.JSON(http.StatusOK, bill)
}

// DeleteBill removes a bill by id.
func (h *Handlers) DeleteBill(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := owner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if h.BillOwnershipCheck && !h.ownedBill(c, uid, id, "Failed to delete bill") {
		return
	}
	ownerID, err := h.Bills.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		h.missingBill(c, "Failed to delete bill", err)
		return
	}
	if err != nil {
		internalError(c, "Failed to delete bill", err)
		return
	}
	h.changed(ctx, models.KindBill, models.ActionDelete, id, ownerID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
