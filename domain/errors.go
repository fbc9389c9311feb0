package domain

import "errors"

// Error taxonomy shared by repositories and services. Repositories return
// ErrNotFound / ErrDuplicateEntity; services translate them into the
// caller-facing sentinels below. The HTTP boundary maps each sentinel to a
// status code.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrDuplicateEntity     = errors.New("entity already exists")
	ErrInvalidCredentials  = errors.New("incorrect email or password provided")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrAlreadyConnected    = errors.New("already connected with this social media account")
	ErrNotConnected        = errors.New("not connected with this social media account")
	ErrUpstreamProvider    = errors.New("upstream provider request failed")
)
