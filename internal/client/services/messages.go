package services

// User-facing auth messages.
const (
	MsgLoginFailed       = "Login failed. Please try again."
	MsgLogoutFailed      = "Logout failed. Please try again."
	MsgLogoutUnreachable = "The server cannot be reached. Logout cannot be performed right now."
	MsgSessionDiscarded  = "Your saved session could not be restored. Please login again."
)
