package client

// User-facing failure messages.
const (
	MsgServerTrouble     = "The server is having problems. Please try again in a moment."
	MsgNoInternet        = "Your internet connection has a problem. Please check your connection and try again."
	MsgSlowConnection    = "The connection to the server is too slow. Please check your internet connection or try again later."
	MsgServerUnreachable = "The server cannot be reached right now. Please try again later."
	MsgSessionExpired    = "Session expired. Please login again."
	MsgRequestFailed     = "Request failed"
)
