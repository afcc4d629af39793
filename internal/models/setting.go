package models

import "time"

// Setting is one key/value document in the Mongo settings collection.
// The system prompt lives here so operators can edit it without a
// redeploy; the service reads it fresh on every request.
type Setting struct {
	Key       string    `bson:"key" json:"key"`
	Value     string    `bson:"value" json:"value"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Well-known setting keys.
const (
	SettingSystemPrompt = "system_prompt"
)
