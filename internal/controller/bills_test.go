package controller

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-bills/internal/models"
)

func createBill(t *testing.T, env *testEnv, body, uid string) models.Bill {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/bills", body, uid)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[models.Bill](t, w)
}

func TestBillPayToggle(t *testing.T) {
	env := newEnv(t)
	bill := createBill(t, env, `{"title":"Rent","amount":"950.00","dueDate":"2025-03-01"}`, "u1")
	assert.True(t, bill.Amount.Equal(decimal.NewFromInt(950)))
	assert.False(t, bill.Paid)
	assert.Nil(t, bill.PaidDate)
	assert.Nil(t, bill.Attachments)

	w := env.do(t, http.MethodPatch, "/api/bills/"+bill.ID, `{"paid":true}`, "u1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decodeBody[models.Bill](t, w)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaidDate)
	assert.True(t, paid.PaidDate.Equal(fixedNow))

	w = env.do(t, http.MethodPatch, "/api/bills/"+bill.ID, `{"paid":false}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	unpaid := decodeBody[models.Bill](t, w)
	assert.False(t, unpaid.Paid)
	assert.Nil(t, unpaid.PaidDate)

	assert.Contains(t, w.Body.String(), `"paidDate":null`)
}

func TestBillAmountIsJSONNumber(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodPost, "/api/bills", `{"title":"Water","amount":12.5}`, "u1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":12.5`)
}

func TestCreateBillValidation(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodPost, "/api/bills", `{"title":"Rent","amount":0}`, "u1")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody[errorBody](t, w)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "amount", body.Details[0].Field)
	assert.Equal(t, "Amount must be greater than 0", body.Details[0].Message)

	w = env.do(t, http.MethodPost, "/api/bills", `{"title":"Rent","amount":0.001}`, "u1")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Amount must have at most 2 decimal places", decodeBody[errorBody](t, w).Details[0].Message)
	assert.Empty(t, env.bills.items)
}

func TestBillMissingWithoutOwnershipCheck(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPatch, "/api/bills/missing", `{"paid":true}`, "u1")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, detailBody{Error: "Failed to update bill", Details: "record not found"}, decodeBody[detailBody](t, w))

	w = env.do(t, http.MethodDelete, "/api/bills/missing", "", "u1")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, detailBody{Error: "Failed to delete bill", Details: "record not found"}, decodeBody[detailBody](t, w))
}

func TestBillDeleteInvalidatesOwnerList(t *testing.T) {
	env := newEnv(t)
	bill := createBill(t, env, `{"title":"Rent","amount":1}`, "u1")

	// Without the ownership check any caller may delete by id; the owner's
	// cache is still the one dropped.
	w := env.do(t, http.MethodDelete, "/api/bills/"+bill.ID, "", "u2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	last := env.events.events[len(env.events.events)-1]
	assert.Equal(t, "u1", last.OwnerID)
	assert.Equal(t, "bill:u1", env.cache.invalidated[len(env.cache.invalidated)-1])
}

func TestBillOwnershipCheck(t *testing.T) {
	env := newEnv(t)
	env.h.BillOwnershipCheck = true
	bill := createBill(t, env, `{"title":"Rent","amount":1}`, "u1")

	w := env.do(t, http.MethodPatch, "/api/bills/"+bill.ID, `{"paid":true}`, "u2")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodDelete, "/api/bills/"+bill.ID, "", "u2")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPatch, "/api/bills/missing", `{"paid":true}`, "u1")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Bill not found"}`, w.Body.String())

	w = env.do(t, http.MethodDelete, "/api/bills/"+bill.ID, "", "u1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListBillsScopedToOwner(t *testing.T) {
	env := newEnv(t)
	createBill(t, env, `{"title":"Rent","amount":950}`, "u1")
	createBill(t, env, `{"title":"Gym","amount":30}`, "u2")

	w := env.do(t, http.MethodGet, "/api/bills", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]models.Bill](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Rent", list[0].Title)
}
