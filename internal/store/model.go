package store

// Identity is an authenticated principal.
type Identity struct {
	ID           int64  `json:"id"`
	Name         string `json:"username"`
	Disabled     bool   `json:"disabled"`
	Superuser    bool   `json:"superuser"`
	PasswordHash string `json:"-"`
}

// CanAccess reports whether the identity may read or modify resources owned
// by ownerID.
func (i *Identity) CanAccess(ownerID int64) bool {
	return i.Superuser || i.ID == ownerID
}

// Hook is a named text resource owned by an identity.
type Hook struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

const (
	// MaxHookName is the longest accepted hook name, in characters.
	MaxHookName = 255
	// MaxHookContent is the longest accepted hook content, in characters.
	MaxHookContent = 1<<16 - 1
)
