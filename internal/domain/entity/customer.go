package entity

import "time"

// Customer es un cliente de la granja.
type Customer struct {
	ID        string
	Name      string
	Document  string
	Phone     string
	CreatedAt time.Time
}
