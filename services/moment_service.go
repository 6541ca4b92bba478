package services

import (
	"fmt"
	"log"

	"monad-moments/models"

	"gorm.io/gorm"
)

// Feed limits, matching the public API defaults.
const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

type MomentService struct {
	DB *gorm.DB
}

func NewMomentService(db *gorm.DB) *MomentService {
	return &MomentService{DB: db}
}

// MomentFields is the creation payload for a moment.
type MomentFields struct {
	FID             int64
	MomentType      models.MomentType
	Title           string
	Description     string
	TransactionHash string
	ContractAddress string
	CustomMessage   string
	ImageURL        string
	IsRare          bool
	Metadata        models.Metadata
}

// CreateMoment persists a new moment record.
func (s *MomentService) CreateMoment(fields MomentFields) (*models.Moment, error) {
	moment := models.Moment{
		FID:             fields.FID,
		MomentType:      fields.MomentType,
		Title:           fields.Title,
		Description:     fields.Description,
		TransactionHash: fields.TransactionHash,
		ContractAddress: fields.ContractAddress,
		CustomMessage:   fields.CustomMessage,
		ImageURL:        fields.ImageURL,
		IsRare:          fields.IsRare,
		Metadata:        fields.Metadata,
	}
	if err := s.DB.Create(&moment).Error; err != nil {
		return nil, err
	}
	return &moment, nil
}

// GetMomentByID returns a moment joined with its owner's profile, or
// nil when absent.
func (s *MomentService) GetMomentByID(id uint) (*models.MomentWithUser, error) {
	var row models.MomentWithUser
	err := s.feedQuery().Where("moments.id = ?", id).Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetUserMoments returns one user's moments, newest first.
func (s *MomentService) GetUserMoments(fid int64, limit, offset int) ([]models.MomentWithUser, error) {
	var rows []models.MomentWithUser
	err := s.feedQuery().
		Where("moments.fid = ?", fid).
		Order("moments.created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&rows).Error
	return rows, err
}

// GetFriendMoments returns the moments of the given friend fids, newest
// first. An empty friend list yields an empty feed, not an error.
func (s *MomentService) GetFriendMoments(fid int64, friendFids []int64, limit, offset int) ([]models.MomentWithUser, error) {
	if len(friendFids) == 0 {
		return []models.MomentWithUser{}, nil
	}
	var rows []models.MomentWithUser
	err := s.feedQuery().
		Where("moments.fid IN ?", friendFids).
		Order("moments.created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&rows).Error
	return rows, err
}

// GlobalFeed returns every user's moments, newest first.
func (s *MomentService) GlobalFeed(limit, offset int) ([]models.MomentWithUser, error) {
	var rows []models.MomentWithUser
	err := s.feedQuery().
		Order("moments.created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&rows).Error
	return rows, err
}

// UpdateCustomMessage sets the owner-editable message on a moment.
// Returns nil when the id is unknown.
func (s *MomentService) UpdateCustomMessage(id uint, message string) (*models.Moment, error) {
	res := s.DB.Model(&models.Moment{}).Where("id = ?", id).Update("custom_message", message)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	var moment models.Moment
	if err := s.DB.First(&moment, id).Error; err != nil {
		return nil, err
	}
	return &moment, nil
}

// SetImageURL attaches an uploaded image to a moment.
func (s *MomentService) SetImageURL(id uint, url string) (*models.Moment, error) {
	res := s.DB.Model(&models.Moment{}).Where("id = ?", id).Update("image_url", url)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	var moment models.Moment
	if err := s.DB.First(&moment, id).Error; err != nil {
		return nil, err
	}
	return &moment, nil
}

// CheckFirstInteraction reports whether no moment exists yet for the
// (fid, contract) pair. A lookup failure defaults to true but is logged,
// mirroring the best-effort duplicate avoidance of the feed callers;
// the classifier treats the error itself as fatal for the transaction.
func (s *MomentService) CheckFirstInteraction(fid int64, contractAddress string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Moment{}).
		Where("fid = ? AND contract_address = ?", fid, contractAddress).
		Count(&count).Error
	if err != nil {
		log.Printf("❌ Error checking first interaction for fid=%d contract=%s: %v", fid, contractAddress, err)
		return true, err
	}
	return count == 0, nil
}

// HasMilestone reports whether a milestone moment for the given
// transaction-count threshold already exists.
func (s *MomentService) HasMilestone(fid int64, threshold uint64) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Moment{}).
		Where("fid = ? AND moment_type = ? AND metadata->>'threshold' = ?",
			fid, models.MomentMilestone, fmt.Sprint(threshold)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MomentService) feedQuery() *gorm.DB {
	return s.DB.Table("moments").
		Select("moments.*, users.username, users.display_name, users.pfp_url").
		Joins("JOIN users ON users.fid = moments.fid")
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}
