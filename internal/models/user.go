package models

// User is an anonymous identity: a public id plus a secret bearer token.
// Records are created exactly once, on the first unauthenticated write,
// and are immutable afterwards. UserToken must never appear in logs or
// read-path responses.
type User struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	UserToken string `json:"-"`
}
