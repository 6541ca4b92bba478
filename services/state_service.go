package services

import (
	"monad-moments/game"
	"monad-moments/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateService hands out per-player game.Store views over the
// game_states table.
type StateService struct {
	DB *gorm.DB
}

func NewStateService(db *gorm.DB) *StateService {
	return &StateService{DB: db}
}

// StoreFor scopes the shared table to one player's keys.
func (s *StateService) StoreFor(fid int64) game.Store {
	return &userStateStore{db: s.DB, fid: fid}
}

type userStateStore struct {
	db  *gorm.DB
	fid int64
}

func (s *userStateStore) Get(key string) (string, bool, error) {
	var row models.GameState
	err := s.db.Where("fid = ? AND key = ?", s.fid, key).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return row.Value, true, nil
}

func (s *userStateStore) Set(key, value string) error {
	row := models.GameState{FID: s.fid, Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fid"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}
