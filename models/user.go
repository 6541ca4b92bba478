package models

import "time"

// User is the host-platform identity anchoring all moments.
// FID is the platform-assigned numeric id and the sole join key to Moments.
type User struct {
	FID           int64     `gorm:"primaryKey;column:fid" json:"fid"`
	Username      string    `gorm:"index;not null" json:"username"`
	DisplayName   string    `json:"display_name,omitempty"`
	PfpURL        string    `gorm:"type:text" json:"pfp_url,omitempty"`
	WalletAddress string    `gorm:"index" json:"wallet_address,omitempty"`
	FirstSeen     time.Time `json:"first_seen" gorm:"autoCreateTime"`
	LastActive    time.Time `json:"last_active" gorm:"autoCreateTime"`
}

// PublicUser is the profile shape exposed to other users.
// WalletAddress is only filled when the viewer owns the profile.
type PublicUser struct {
	FID           int64  `json:"fid"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name,omitempty"`
	PfpURL        string `json:"pfp_url,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

// Public returns the externally visible view of a user.
func (u *User) Public(viewerFid int64) PublicUser {
	pub := PublicUser{
		FID:         u.FID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		PfpURL:      u.PfpURL,
	}
	if viewerFid == u.FID {
		pub.WalletAddress = u.WalletAddress
	}
	return pub
}
