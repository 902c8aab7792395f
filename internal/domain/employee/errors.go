package employee

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEmployeeCodeExists  = errors.New("employee code already exists")
	ErrFingerprintIDExists = errors.New("fingerprint id already assigned to another employee")
	ErrUsernameExists      = errors.New("username already taken")
)
