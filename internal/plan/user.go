package plan

import "fmt"

// UserInfo is the signed-in user's profile record, stored under the
// fixed userInfo key on both the local cache and the remote store.
// The timestamp strings are carried verbatim as the auth provider
// supplied them.
type UserInfo struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	UID         string `json:"uid"`
	CreatedAt   string `json:"createdAt,omitempty"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// Validate checks that the record identifies a user.
func (u *UserInfo) Validate() error {
	if u.UID == "" {
		return fmt.Errorf("uid is required")
	}
	return nil
}
