package models

import (
	"encoding/json"
	"time"
)

// Link представляет одну сокращённую ссылку
type Link struct {
	ID          int64      `json:"id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	CustomAlias *string    `json:"custom_alias,omitempty"`
	UserID      int64      `json:"user_id"`
	Clicks      int64      `json:"clicks"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// IsExpired сообщает, истёк ли срок действия ссылки на момент now
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

type CreateLinkInput struct {
	OriginalURL string     `json:"original_url" binding:"required,url"`
	CustomAlias *string    `json:"custom_alias,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateLinkInput частичное обновление: отсутствующее поле не трогается,
// явный null сбрасывает expires_at. Короткий код и алиас не изменяются.
type UpdateLinkInput struct {
	OriginalURL *string     `json:"original_url,omitempty"`
	ExpiresAt   OptNullTime `json:"expires_at"`
}

// OptNullTime различает три состояния JSON-поля времени:
// поле отсутствует (Set == false), поле равно null (Set && !Valid),
// поле задано (Set && Valid).
type OptNullTime struct {
	Set   bool
	Valid bool
	Time  time.Time
}

func (o *OptNullTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Time); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o OptNullTime) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Time)
}
