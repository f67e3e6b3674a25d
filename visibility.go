package blog

import "github.com/goliatone/go-errors"

// Viewer classifies who is asking for posts
type Viewer int

const (
	ViewerAnonymous Viewer = iota
	ViewerUser
	ViewerAdmin
)

func (v Viewer) String() string {
	switch v {
	case ViewerUser:
		return "user"
	case ViewerAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// ViewerFor maps the (optional) authenticated user to a Viewer
func ViewerFor(user *User) Viewer {
	switch {
	case user == nil:
		return ViewerAnonymous
	case user.IsAdmin():
		return ViewerAdmin
	default:
		return ViewerUser
	}
}

// PostAction is an operation on posts
type PostAction string

const (
	ActionList    PostAction = "list"
	ActionRead    PostAction = "read"
	ActionListAll PostAction = "list-all"
	ActionCreate  PostAction = "create"
	ActionUpdate  PostAction = "update"
	ActionDelete  PostAction = "delete"
)

// Scope is the set of statuses a query may return
type Scope struct {
	statuses []PostStatus
}

var (
	// ScopePublished only matches published posts
	ScopePublished = Scope{statuses: []PostStatus{PostPublished}}
	// ScopeAll matches every status
	ScopeAll = Scope{statuses: []PostStatus{PostDraft, PostPublished}}
)

// Statuses returns the eligible statuses as plain strings for SQL binding
func (s Scope) Statuses() []string {
	out := make([]string, len(s.statuses))
	for i, status := range s.statuses {
		out[i] = string(status)
	}
	return out
}

// Allows reports whether a status falls inside the scope
func (s Scope) Allows(status PostStatus) bool {
	for _, st := range s.statuses {
		if st == status {
			return true
		}
	}
	return false
}

// IsEmpty is true for the zero Scope, which matches nothing
func (s Scope) IsEmpty() bool {
	return len(s.statuses) == 0
}

type decision struct {
	scope Scope
	err   error
}

func allow(scope Scope) decision { return decision{scope: scope} }
func deny(err error) decision    { return decision{err: err} }

// visibilityTable is the full Viewer x PostAction matrix. The public
// read paths return published posts to every viewer, admins see drafts
// through list-all only.
var visibilityTable = map[PostAction]map[Viewer]decision{
	ActionList: {
		ViewerAnonymous: allow(ScopePublished),
		ViewerUser:      allow(ScopePublished),
		ViewerAdmin:     allow(ScopePublished),
	},
	ActionRead: {
		ViewerAnonymous: allow(ScopePublished),
		ViewerUser:      allow(ScopePublished),
		ViewerAdmin:     allow(ScopePublished),
	},
	ActionListAll: {
		ViewerAnonymous: deny(ErrTokenMissing),
		ViewerUser:      deny(ErrAdminRequired),
		ViewerAdmin:     allow(ScopeAll),
	},
	ActionCreate: {
		ViewerAnonymous: deny(ErrTokenMissing),
		ViewerUser:      deny(ErrAdminRequired),
		ViewerAdmin:     allow(ScopeAll),
	},
	ActionUpdate: {
		ViewerAnonymous: deny(ErrTokenMissing),
		ViewerUser:      deny(ErrAdminRequired),
		ViewerAdmin:     allow(ScopeAll),
	},
	ActionDelete: {
		ViewerAnonymous: deny(ErrTokenMissing),
		ViewerUser:      deny(ErrAdminRequired),
		ViewerAdmin:     allow(ScopeAll),
	},
}

// Decide looks up the scope a viewer gets for an action. Unknown
// actions or viewers are denied.
func Decide(viewer Viewer, action PostAction) (Scope, error) {
	row, ok := visibilityTable[action]
	if !ok {
		return Scope{}, errors.New("unknown post action: "+string(action), errors.CategoryInternal)
	}
	d, ok := row[viewer]
	if !ok {
		return Scope{}, ErrAdminRequired
	}
	return d.scope, d.err
}
