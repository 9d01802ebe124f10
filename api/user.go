package api

//User is the principal on whose behalf a request is executed
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

//IsAnonymous is true when no identity is attached to the request
func (u User) IsAnonymous() bool {
	return len(u.ID) == 0
}

//Variables exposes the user to rule expressions
func (u User) Variables() map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"anonymous": u.IsAnonymous(),
	}
}

//RequestScope is the request context checks are evaluated in
type RequestScope struct {
	User       User
	Attributes map[string]interface{}
}
