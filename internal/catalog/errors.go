package catalog

import "errors"

var (
	ErrEmptyName       = errors.New("empty name")       // 400
	ErrDuplicateName   = errors.New("duplicate name")   // 409
	ErrInvalidPrice    = errors.New("invalid price")    // 400
	ErrInvalidCategory = errors.New("invalid category") // 400
	ErrNotFound        = errors.New("not found")        // 404
)
