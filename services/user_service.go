package services

import (
	"strings"
	"time"

	"monad-moments/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Profile is the host-platform identity payload received at sign-in.
type Profile struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PfpURL      string `json:"pfp_url"`
}

// GetByFid returns the user or nil when absent.
func (s *UserService) GetByFid(fid int64) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "fid = ?", fid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UserByWallet resolves a user by wallet address (case-insensitive) or
// nil when the address belongs to no tracked user.
func (s *UserService) UserByWallet(address string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "wallet_address = ?", strings.ToLower(address)).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateOrUpdate upserts a user from a sign-in profile. An existing
// user keeps first_seen and wallet_address; profile fields and
// last_active are refreshed.
func (s *UserService) CreateOrUpdate(profile Profile) (*models.User, error) {
	user := models.User{
		FID:         profile.FID,
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		PfpURL:      profile.PfpURL,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fid"}},
		DoUpdates: clause.Assignments(map[string]any{
			"username":     profile.Username,
			"display_name": profile.DisplayName,
			"pfp_url":      profile.PfpURL,
			"last_active":  time.Now(),
		}),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}
	return s.GetByFid(profile.FID)
}

// UpdateWallet sets the user's wallet address and bumps last_active.
// Returns nil when the fid is unknown.
func (s *UserService) UpdateWallet(fid int64, address string) (*models.User, error) {
	res := s.DB.Model(&models.User{}).Where("fid = ?", fid).Updates(map[string]any{
		"wallet_address": strings.ToLower(address),
		"last_active":    time.Now(),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetByFid(fid)
}

// UsersWithWallets lists every user with a connected wallet, for the
// chain scan worker and milestone job.
func (s *UserService) UsersWithWallets() ([]models.User, error) {
	var users []models.User
	err := s.DB.Where("wallet_address IS NOT NULL AND wallet_address <> ''").Find(&users).Error
	return users, err
}
