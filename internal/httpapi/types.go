package httpapi

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type commandRequest struct {
	Command string         `json:"command"`
	Args    map[string]any `json:"args"`
	// State is accepted as an alias for args, matching the platform's
	// command envelope.
	State map[string]any `json:"state"`
}

type commandResponse struct {
	Status   string         `json:"status"`
	DeviceID string         `json:"device_id"`
	State    map[string]any `json:"state"`
}

type deviceItem struct {
	ID           uuid.UUID       `json:"id"`
	Protocol     string          `json:"protocol"`
	ExternalID   string          `json:"external_id"`
	Host         string          `json:"host"`
	Name         string          `json:"name"`
	Mode         string          `json:"mode"`
	Manufacturer string          `json:"manufacturer"`
	Model        string          `json:"model"`
	Capabilities json.RawMessage `json:"capabilities,omitempty"`
	Inputs       json.RawMessage `json:"inputs,omitempty"`
	Online       bool            `json:"online"`
	LastSeen     time.Time       `json:"last_seen"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	State        map[string]any  `json:"state"`
}
