package models

import "errors"

// ErrDuplicateEmail is returned by user stores when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")
