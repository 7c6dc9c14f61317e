package service

// Caller is the identity a write request was made under. It is an
// explicit two-variant sum so every call site handles both branches
// instead of threading a nullable id/token pair around.
type Caller interface {
	caller()
}

// Anonymous marks a request with no credentials; create allocates a
// fresh identity for it.
type Anonymous struct{}

// Authenticated carries credentials previously issued by the service.
type Authenticated struct {
	UserID    string
	UserToken string
}

func (Anonymous) caller()     {}
func (Authenticated) caller() {}
