// Package models defines runtime application settings stored as key/value
// rows and edited through the admin API.
package models

import "time"

// AppSetting is one key/value pair. Values are stored as strings; the
// settings service parses them into typed values on read.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
