package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// MomentType enumerates the achievement categories a moment can carry.
type MomentType string

const (
	MomentFirstTransaction MomentType = "first_transaction"
	MomentFirstInteraction MomentType = "first_interaction"
	MomentHighValue        MomentType = "high_value"
	MomentMilestone        MomentType = "milestone"
	MomentNewContract      MomentType = "new_contract"
	MomentCustom           MomentType = "custom"
)

// Metadata is the open key-value map attached to a moment, stored as jsonb.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported metadata column type")
	}
}

// Moment is a recorded achievement event tied to one user and optionally
// one transaction/contract. Immutable after creation except CustomMessage
// (owner-editable) and ImageURL. The existence of a moment for a given
// (fid, contract_address) pair is the first-interaction signal.
type Moment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	FID             int64      `gorm:"column:fid;index;not null" json:"fid"`
	MomentType      MomentType `gorm:"type:varchar(32);not null" json:"moment_type"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `json:"description,omitempty"`
	TransactionHash string     `json:"transaction_hash,omitempty"`
	ContractAddress string     `gorm:"index" json:"contract_address,omitempty"`
	CustomMessage   string     `json:"custom_message,omitempty"`
	ImageURL        string     `gorm:"type:text" json:"image_url,omitempty"`
	IsRare          bool       `gorm:"default:false" json:"is_rare"`
	Metadata        Metadata   `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// MomentWithUser is a feed row: a moment joined with its owner's profile.
type MomentWithUser struct {
	Moment      `gorm:"embedded"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	PfpURL      string `gorm:"column:pfp_url" json:"pfp_url,omitempty"`
}
