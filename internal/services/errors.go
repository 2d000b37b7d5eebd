package services

import "errors"

// ErrInvalidCredentials is returned for every login failure. An unknown
// email and a wrong password produce this same value so the caller cannot
// tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")
