package users

import "errors"

// ErrEmailTaken is returned when registering with an email that already has an account.
var ErrEmailTaken = errors.New("user with this email already exists")

// ErrUsernameTaken is returned when the requested username belongs to another user.
var ErrUsernameTaken = errors.New("username is already taken")

// ErrInvalidCredentials is returned on login with an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserNotFound is returned when a user lookup finds nothing.
var ErrUserNotFound = errors.New("user not found")

// ErrGenToken is returned when we cannot sign a JWT.
var ErrGenToken = errors.New("failed to generate token")
