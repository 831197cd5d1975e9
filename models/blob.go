package models

import "io"

type Blob struct {
	FileName    string
	ContentType string
	ReadCloser  io.ReadCloser
}
