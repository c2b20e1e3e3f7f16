package handlers

const (
	ErrInvalidRequestBody  = "invalid request body"
	ErrRequestTooLarge     = "request body too large"
	ErrUnauthorized        = "unauthorized"
	ErrInternalServerError = "internal server error"
	ErrTooManyRequests     = "too many requests"

	MsgAccountNotFound = "no account found for this email, did you mean to sign up?"
	MsgFoodNotFound    = "sorry, this food is not in the database"
	MsgRetryLater      = "the service is temporarily unavailable, please try again"

	// maxBodyBytes caps JSON request bodies
	maxBodyBytes = 1 << 20
)
