package validation

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"

	"todo-bills/internal/models"
)

// TodoCreate is the body of POST /api/todos.
type TodoCreate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
}

// TodoUpdate is the body of PATCH /api/todos/{id}.
type TodoUpdate struct {
	Title       models.Optional[string] `json:"title"`
	Description models.Optional[string] `json:"description"`
	DueDate     models.Optional[string] `json:"dueDate"`
	Completed   models.Optional[bool]   `json:"completed"`
}

// BillCreate is the body of POST /api/bills.
type BillCreate struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Amount      models.Optional[Amount] `json:"amount"`
	DueDate     *string                 `json:"dueDate"`
	Attachments []string                `json:"attachments"`
}

// BillUpdate is the body of PATCH /api/bills/{id}.
type BillUpdate struct {
	Title       models.Optional[string]   `json:"title"`
	Description models.Optional[string]   `json:"description"`
	Amount      models.Optional[Amount]   `json:"amount"`
	DueDate     models.Optional[string]   `json:"dueDate"`
	Paid        models.Optional[bool]     `json:"paid"`
	PaidDate    models.Optional[string]   `json:"paidDate"`
	Attachments models.Optional[[]string] `json:"attachments"`
}

// IsTogglePaid reports whether the payload carries only the paid flag and
// optionally paidDate.
func (u BillUpdate) IsTogglePaid() bool {
	return u.Paid.Set && !u.Title.Set && !u.Description.Set && !u.Amount.Set &&
		!u.DueDate.Set && !u.Attachments.Set
}

// Credentials is the body of the register and login endpoints.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Todo validates a create payload.
func (v *Validator) Todo(in TodoCreate) (models.NewTodo, error) {
	c := &collector{v: v.v}
	var out models.NewTodo
	if in.Title == nil {
		c.required("title")
	} else {
		c.title(*in.Title)
		out.Title = *in.Title
	}
	out.Description = c.description(in.Description)
	out.DueDate = c.date("dueDate", in.DueDate)
	return out, c.err()
}

// TodoPatch validates an update payload.
func (v *Validator) TodoPatch(in TodoUpdate) (models.TodoPatch, error) {
	c := &collector{v: v.v}
	var out models.TodoPatch
	if in.Title.Set {
		if !in.Title.Valid {
			c.notNull("title", "string")
		} else {
			c.title(in.Title.Value)
			out.Title = in.Title
		}
	}
	out.Description = c.clearableDescription(in.Description)
	out.DueDate = c.clearableDate("dueDate", in.DueDate)
	if in.Completed.Set {
		if !in.Completed.Valid {
			c.notNull("completed", "boolean")
		} else {
			out.Completed = in.Completed
		}
	}
	return out, c.err()
}

// Bill validates a create payload.
func (v *Validator) Bill(in BillCreate) (models.NewBill, error) {
	c := &collector{v: v.v}
	var out models.NewBill
	if in.Title == nil {
		c.required("title")
	} else {
		c.title(*in.Title)
		out.Title = *in.Title
	}
	out.Description = c.description(in.Description)
	switch {
	case !in.Amount.Set:
		c.required("amount")
	case !in.Amount.Valid:
		c.notNull("amount", "number")
	default:
		out.Amount, _ = c.amount(in.Amount.Value)
	}
	out.DueDate = c.date("dueDate", in.DueDate)
	out.Attachments = c.attachments("attachments", in.Attachments)
	return out, c.err()
}

// BillPatch validates an update payload. A toggle-paid payload is checked by
// the narrower schema: paid is required and only paidDate may accompany it.
func (v *Validator) BillPatch(in BillUpdate) (models.BillPatch, error) {
	c := &collector{v: v.v}
	var out models.BillPatch
	if in.IsTogglePaid() {
		c.paid(in.Paid, &out)
		c.paidDate(in.PaidDate, &out)
		return out, c.err()
	}
	if in.Title.Set {
		if !in.Title.Valid {
			c.notNull("title", "string")
		} else {
			c.title(in.Title.Value)
			out.Title = in.Title
		}
	}
	out.Description = c.clearableDescription(in.Description)
	if in.Amount.Set {
		if !in.Amount.Valid {
			c.notNull("amount", "number")
		} else if d, ok := c.amount(in.Amount.Value); ok {
			out.Amount = models.Some(d)
		}
	}
	out.DueDate = c.clearableDate("dueDate", in.DueDate)
	if in.Paid.Set {
		c.paid(in.Paid, &out)
	}
	c.paidDate(in.PaidDate, &out)
	if in.Attachments.Set {
		if list := c.attachments("attachments", in.Attachments.Value); list != nil {
			out.Attachments = models.Some(list)
		} else {
			out.Attachments = models.Null[[]string]()
		}
	}
	return out, c.err()
}

// Credentials validates register/login input with struct tags.
func (v *Validator) Credentials(in Credentials) error {
	err := v.v.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{{Field: "body", Message: err.Error()}}
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: credentialMessage(fe)})
	}
	return out
}

func credentialMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}

func (c *collector) paid(p models.Optional[bool], out *models.BillPatch) {
	if !p.Valid {
		c.notNull("paid", "boolean")
		return
	}
	out.Paid = p
}

func (c *collector) paidDate(p models.Optional[string], out *models.BillPatch) {
	if !p.Set {
		return
	}
	var s *string
	if p.Valid {
		s = &p.Value
	}
	if t := c.timestamp("paidDate", s); t != nil {
		out.PaidDate = models.Some(*t)
	} else {
		out.PaidDate = models.Null[time.Time]()
	}
}

func (c *collector) clearableDescription(p models.Optional[string]) models.Optional[string] {
	if !p.Set {
		return p
	}
	var s *string
	if p.Valid {
		s = &p.Value
	}
	if d := c.description(s); d != nil {
		return models.Some(*d)
	}
	return models.Null[string]()
}

func (c *collector) clearableDate(field string, p models.Optional[string]) models.Optional[civil.Date] {
	if !p.Set {
		return models.Optional[civil.Date]{}
	}
	var s *string
	if p.Valid {
		s = &p.Value
	}
	if d := c.date(field, s); d != nil {
		return models.Some(*d)
	}
	return models.Null[civil.Date]()
}
