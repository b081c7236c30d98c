package model

// User data model. AvatarURL is nullable in storage.
type User struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Name      string  `json:"name"`
}
