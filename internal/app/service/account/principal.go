package account

// Principal is the authenticated caller as carried by an access token.
// A nil *Principal is an anonymous caller.
type Principal struct {
	UserID      string
	IsStaff     bool
	IsSuperuser bool
}

func (p *Principal) Authenticated() bool { return p != nil && p.UserID != "" }

// Editor reports staff or superuser.
func (p *Principal) Editor() bool { return p.Authenticated() && (p.IsStaff || p.IsSuperuser) }

func (p *Principal) Admin() bool { return p.Authenticated() && p.IsSuperuser }

// Owns reports whether the caller is userID.
func (p *Principal) Owns(userID string) bool { return p.Authenticated() && p.UserID == userID }

func (p *Principal) ID() string {
	if p == nil {
		return ""
	}
	return p.UserID
}

// SeesAccount reports whether the caller may read userID's full record.
func (p *Principal) SeesAccount(userID string) bool { return p.Owns(userID) || p.Editor() }
