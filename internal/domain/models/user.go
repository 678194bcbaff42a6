package models

import "github.com/google/uuid"

// User представляет учетную запись покупателя или администратора
type User struct {
	ID       uuid.UUID
	Email    string
	PassHash []byte
	IsAdmin  bool
}

// Identity — личность текущего запроса, извлекается из JWT и явно передается в сервисы
type Identity struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
}
