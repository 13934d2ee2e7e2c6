package domain

import "time"

// Gift is a read-only catalog entry.
type Gift struct {
	Name               string `json:"name" mapstructure:"name"`
	Price              int64  `json:"price" mapstructure:"price"`
	Category           string `json:"category" mapstructure:"category"`
	Effect             string `json:"effect,omitempty" mapstructure:"effect"`
	TriggersAutoFollow bool   `json:"triggersAutoFollow" mapstructure:"triggers_auto_follow"`
}

// GiftRecord is one committed gift inside a room session.
type GiftRecord struct {
	From     UserID    `json:"from"`
	To       UserID    `json:"to"`
	Gift     string    `json:"gift"`
	Quantity int64     `json:"quantity"`
	Total    int64     `json:"total"`
	At       time.Time `json:"at"`
}
