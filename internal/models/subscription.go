package models

import "time"

type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type Newsletter struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
}
