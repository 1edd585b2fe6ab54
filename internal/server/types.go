// internal/server/types.go
package server

import (
	"github.com/biscuit28110/Signature-by-lt-v2/internal/auth"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/database"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// contentUpdateRequest carries a partial content edit. Nil fields are left
// untouched.
type contentUpdateRequest struct {
	HeroTitle    *string `json:"heroTitle"`
	HeroSubtitle *string `json:"heroSubtitle"`
	CTAPrimary   *string `json:"ctaPrimary"`
	CTASecondary *string `json:"ctaSecondary"`
}

type videoInfo struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	SizeBytes  int64  `json:"sizeBytes"`
	UploadedAt string `json:"uploadedAt"`
}

// PageData feeds the public page templates.
type PageData struct {
	Title    string
	Active   string
	Content  database.Content
	Settings map[string]string
}

// AdminPageData feeds the dashboard template.
type AdminPageData struct {
	Title    string
	Active   string
	User     string
	Content  database.Content
	Settings map[string]string
	Videos   []videoInfo
	Logs     []auth.AccessLogEntry
}
