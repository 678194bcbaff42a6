package models

import "github.com/google/uuid"

// Profile — профиль пользователя, 1:1 с учетной записью
type Profile struct {
	ID        uuid.UUID `json:"id"`
	FullName  *string   `json:"full_name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
}
