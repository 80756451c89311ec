package models

import (
	"time"
)

// Click одна запись о переходе по ссылке (детальная статистика,
// независимая от атомарного счётчика clicks в самой ссылке)
type Click struct {
	ID        int64     `json:"id"`
	LinkID    int64     `json:"link_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer"`
	ClickedAt time.Time `json:"clicked_at"`
}

// ClickEvent событие перехода, отправляемое в worker pool
type ClickEvent struct {
	LinkID    int64
	IPAddress string
	UserAgent string
	Referer   string
}

type DailyClickStats struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}
