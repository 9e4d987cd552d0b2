package db

import "fmt"

var (
	ErrNotFound    = fmt.Errorf("not found")
	ErrInvalidData = fmt.Errorf("invalid data provided")
	// ErrUnknownPackage is returned when a package tier is not in the catalog.
	ErrUnknownPackage = fmt.Errorf("unknown package")
)
