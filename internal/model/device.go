package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Protocol is the protocol identifier this adapter registers devices under.
const Protocol = "flux_led"

type Device struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Protocol string    `gorm:"index,uniqueIndex:idx_devices_protocol_external;not null" json:"protocol"`
	// ExternalID is the bulb's network address with dots replaced by
	// underscores, the stable id the platform knows the bulb by.
	ExternalID   string         `gorm:"index,uniqueIndex:idx_devices_protocol_external;not null" json:"external_id"`
	Host         string         `gorm:"not null" json:"host"`
	Name         string         `json:"name"`
	Mode         string         `json:"mode"`
	Manufacturer string         `json:"manufacturer"`
	Model        string         `json:"model"`
	Capabilities datatypes.JSON `gorm:"type:jsonb" json:"capabilities"`
	Inputs       datatypes.JSON `gorm:"type:jsonb" json:"inputs"`
	Online       bool           `json:"online"`
	LastSeen     time.Time      `json:"last_seen"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// BeforeCreate GORM hook: ensure UUID is set
func (d *Device) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
