package dto

import "time"

type UserOutput struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
