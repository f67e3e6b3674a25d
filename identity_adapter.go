package blog

// UserIdentity adapts a User into the Identity interface for token generation.
type UserIdentity struct {
	user *User
}

// IdentityFromUser returns an Identity adapter for the provided user.
func IdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return UserIdentity{user: user}
}

// ID returns the numeric user id in decimal form, as carried in the sub claim.
func (u UserIdentity) ID() string {
	if u.user == nil {
		return ""
	}
	return formatID(u.user.ID)
}

func (u UserIdentity) Username() string {
	if u.user == nil {
		return ""
	}
	return u.user.Username
}

func (u UserIdentity) Email() string {
	if u.user == nil {
		return ""
	}
	return u.user.Email
}

func (u UserIdentity) Role() string {
	if u.user == nil {
		return ""
	}
	return string(u.user.Role)
}

// User returns the adapted record.
func (u UserIdentity) User() *User {
	return u.user
}
