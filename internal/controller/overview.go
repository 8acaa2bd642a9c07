package controller

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"todo-bills/internal/overview"
	"todo-bills/internal/validation"
)

// Overview returns the calendar month view for the caller. month defaults
// to the current month in the configured time zone.
func (h *Handlers) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	uid, ok := owner(c)
	if !ok {
		return
	}
	loc := h.location()
	today := civil.DateOf(h.now().In(loc))
	year, month := today.Year, today.Month
	if q := c.Query("month"); q != "" {
		y, m, err := overview.ParseMonth(q)
		if err != nil {
			badRequest(c, validation.Errors{{Field: "month", Message: "Invalid month"}})
			return
		}
		year, month = y, m
	}

	todos, err := h.Todos.List(ctx, uid)
	if err != nil {
		internalError(c, "Failed to build overview", err)
		return
	}
	bills, err := h.Bills.List(ctx, uid)
	if err != nil {
		internalError(c, "Failed to build overview", err)
		return
	}
	c.JSON(http.StatusOK, overview.BuildMonth(year, month, today, todos, bills, loc))
}
