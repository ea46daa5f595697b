package models

import "time"

// SystemSetting is a generic key/value setting row. The loyalty config is
// stored under the "loyalty_config" key as JSON.
type SystemSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

const SettingKeyLoyaltyConfig = "loyalty_config"

type UpdateSettingRequest struct {
	Value string `json:"value"`
}
