package models

// Profile is the session user's account profile.
type Profile struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// HasAvatar reports whether an uploaded avatar is set.
func (p Profile) HasAvatar() bool {
	return p.AvatarURL != nil && *p.AvatarURL != ""
}

// UpdateProfileRequest is the body of PUT /api/auth/profile.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AvatarResponse is returned by POST /api/auth/avatar.
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// AvatarFile is an image chosen by the user, not yet uploaded.
type AvatarFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// Size returns the file size in bytes.
func (f AvatarFile) Size() int64 {
	return int64(len(f.Data))
}
