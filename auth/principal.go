package auth

// Principal is the authenticated identity of a caller.
// ID is the public user identifier; Username is the login email.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
