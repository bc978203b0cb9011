package models

// Session is the authenticated identity of the current user. A non-empty
// Token always comes with the Username and IsAdmin it was issued for.
type Session struct {
	Token    string
	Username string
	IsAdmin  bool
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// TokenGrant is the response of the token endpoint.
type TokenGrant struct {
	Token   string `json:"token"`
	IsAdmin Flag   `json:"is_admin"`
}
