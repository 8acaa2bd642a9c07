// Package overview groups todos and bills by due day for the month calendar
// and classifies each day by urgency. Everything here is pure: the same
// inputs and "today" always give the same result.
package overview

import (
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"todo-bills/internal/models"
)

// Status is the highlight of a calendar day.
type Status string

const (
	Normal  Status = "normal"
	Urgent  Status = "urgent"
	Overdue Status = "overdue"
)

// UrgentWindow is how many days ahead (inclusive) open items count as urgent.
const UrgentWindow = 3

// Day holds the items due on one calendar date.
type Day struct {
	Date  civil.Date    `json:"date"`
	Todos []models.Todo `json:"todos"`
	Bills []models.Bill `json:"bills"`
}

func newDay(d civil.Date) *Day {
	return &Day{Date: d, Todos: []models.Todo{}, Bills: []models.Bill{}}
}

// Open counts incomplete todos and unpaid bills.
func (d Day) Open() int {
	n := 0
	for _, t := range d.Todos {
		if t.Open() {
			n++
		}
	}
	for _, b := range d.Bills {
		if b.Open() {
			n++
		}
	}
	return n
}

// Bucket groups items by due date. Items without a due date are left out.
// Input order is kept within each day.
func Bucket(todos []models.Todo, bills []models.Bill) map[civil.Date]*Day {
	days := make(map[civil.Date]*Day)
	get := func(d civil.Date) *Day {
		day, ok := days[d]
		if !ok {
			day = newDay(d)
			days[d] = day
		}
		return day
	}
	for _, t := range todos {
		if t.DueDate != nil {
			day := get(*t.DueDate)
			day.Todos = append(day.Todos, t)
		}
	}
	for _, b := range bills {
		if b.DueDate != nil {
			day := get(*b.DueDate)
			day.Bills = append(day.Bills, b)
		}
	}
	return days
}

// Classify compares calendar dates only. A day with no open items is Normal.
func Classify(date civil.Date, open int, today civil.Date) Status {
	if open == 0 {
		return Normal
	}
	switch until := date.DaysSince(today); {
	case until < 0:
		return Overdue
	case until <= UrgentWindow:
		return Urgent
	default:
		return Normal
	}
}

// MonthlyExpenses sums the amounts of bills paid within the given month,
// whatever their due date. paidDate is read in loc.
func MonthlyExpenses(bills []models.Bill, year int, month time.Month, loc *time.Location) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if !b.Paid || b.PaidDate == nil {
			continue
		}
		p := b.PaidDate.In(loc)
		if p.Year() == year && p.Month() == month {
			total = total.Add(b.Amount)
		}
	}
	return total
}

// CalendarDay is one cell of the month view.
type CalendarDay struct {
	Day
	Status  Status `json:"status"`
	IsToday bool   `json:"isToday"`
}

// Month is the calendar view of one month.
type Month struct {
	Month    string          `json:"month"`
	Today    civil.Date      `json:"today"`
	Expenses decimal.Decimal `json:"expenses"`
	Days     []CalendarDay   `json:"days"`
}

// BuildMonth lays out every day of year/month with its items and status.
func BuildMonth(year int, month time.Month, today civil.Date, todos []models.Todo, bills []models.Bill, loc *time.Location) Month {
	buckets := Bucket(todos, bills)
	first := civil.Date{Year: year, Month: month, Day: 1}
	out := Month{
		Month:    fmt.Sprintf("%04d-%02d", year, int(month)),
		Today:    today,
		Expenses: MonthlyExpenses(bills, year, month, loc),
	}
	for d := first; d.Month == month; d = d.AddDays(1) {
		day, ok := buckets[d]
		if !ok {
			day = newDay(d)
		}
		out.Days = append(out.Days, CalendarDay{
			Day:     *day,
			Status:  Classify(d, day.Open(), today),
			IsToday: d == today,
		})
	}
	return out
}

// Dates returns the bucket keys in ascending order.
func Dates(buckets map[civil.Date]*Day) []civil.Date {
	out := make([]civil.Date, 0, len(buckets))
	for d := range buckets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}
