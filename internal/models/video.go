package models

import "time"

type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Product     string    `json:"product,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// VideoForm is the multipart body of admin create/update. File is required on
// create and omitted from the request on update when nil.
type VideoForm struct {
	Title       string `validate:"required"`
	Description string
	Product     string
	IsActive    bool
	File        *Upload
}
