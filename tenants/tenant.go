package tenants

import "strconv"

// LoginInfo is the tenant the current session belongs to.
type LoginInfo struct {
	ID          int64  `json:"id"`
	TenancyName string `json:"tenancyName"` // Unique, URL-safe tenant code
	Name        string `json:"name,omitempty"`
}

// FormatID renders a tenant id the way the tenant-selector cookie and header carry it.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
