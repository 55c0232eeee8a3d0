package accounts

import "errors"

var (
	// ErrUsernameRequired indicates a blank username on user creation.
	ErrUsernameRequired = errors.New("accounts.username_required")

	// ErrUsernameTaken indicates the username already exists in this
	// tenant. Usernames are unique per tenant only.
	ErrUsernameTaken = errors.New("accounts.username_taken")

	// ErrUserNotFound indicates the user does not exist in this tenant.
	ErrUserNotFound = errors.New("accounts.user_not_found")
)
