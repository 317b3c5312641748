package repository

import (
	"context"

	"github.com/intranet-lab/backend/internal/entity"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type DeviceRepository interface {
	Upsert(ctx context.Context, data *entity.Device) error
	GetActiveByUserID(ctx context.Context, userID string) ([]entity.Device, error)
	DeactivateByToken(ctx context.Context, token string) error
	DeleteByToken(ctx context.Context, userID, token string) error
}

type deviceRepository struct{}

func NewDeviceRepository() *deviceRepository {
	return &deviceRepository{}
}

func (r *deviceRepository) Upsert(ctx context.Context, data *entity.Device) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token"}},
			DoUpdates: clause.Assignments(map[string]any{
				"user_id":   data.UserID,
				"platform":  data.Platform,
				"is_active": true,
			}),
		}).Create(data).Error
}

func (r *deviceRepository) GetActiveByUserID(ctx context.Context, userID string) ([]entity.Device, error) {
	var result []entity.Device
	err := xcontext.DB(ctx).
		Where("user_id=? AND is_active=?", userID, true).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *deviceRepository) DeactivateByToken(ctx context.Context, token string) error {
	return xcontext.DB(ctx).Model(&entity.Device{}).
		Where("token=?", token).
		Update("is_active", false).Error
}

func (r *deviceRepository) DeleteByToken(ctx context.Context, userID, token string) error {
	return xcontext.DB(ctx).
		Where("user_id=? AND token=?", userID, token).
		Delete(&entity.Device{}).Error
}
