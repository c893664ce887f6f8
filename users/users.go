package users

// LoginInfo is the current user as reported by the session endpoint.
type LoginInfo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name,omitempty"`
	Surname       string `json:"surname,omitempty"`
	UserName      string `json:"userName"`
	EmailAddress  string `json:"emailAddress,omitempty"`
	SecurityStamp string `json:"securityStamp,omitempty"` // Changes whenever the user's credentials change
}

// FullName returns "Name Surname", or the user name when both are empty.
func (u *LoginInfo) FullName() string {
	switch {
	case u.Name == "" && u.Surname == "":
		return u.UserName
	case u.Surname == "":
		return u.Name
	case u.Name == "":
		return u.Surname
	}
	return u.Name + " " + u.Surname
}
