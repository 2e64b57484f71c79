package models

import "io"

// Upload is a file part of a multipart request.
type Upload struct {
	FileName    string
	ContentType string
	Reader      io.Reader
}
