package framelib

import "errors"

var (
	ErrEmptyLibrary = errors.New("no photos available to display")
	ErrNotFound     = errors.New("photo you are trying to show is not in the library")
)
