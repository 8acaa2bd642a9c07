package models

import "time"

// Record kinds.
const (
	KindTodo = "todo"
	KindBill = "bill"
)

// Change actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ChangeEvent is published to Kafka after a successful mutation.
type ChangeEvent struct {
	Kind    string    `json:"kind"`
	Action  string    `json:"action"`
	ID      string    `json:"id"`
	OwnerID string    `json:"ownerId"`
	At      time.Time `json:"at"`
}
