package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/intranet-lab/backend/internal/entity"
	"github.com/intranet-lab/backend/internal/model"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/api/expo"
	"github.com/intranet-lab/backend/pkg/errorx"
	"github.com/intranet-lab/backend/pkg/xcontext"
)

type DeviceDomain interface {
	Register(ctx context.Context, req *model.RegisterDeviceRequest) (*model.RegisterDeviceResponse, error)
	Remove(ctx context.Context, req *model.RemoveDeviceRequest) (*model.RemoveDeviceResponse, error)
}

type deviceDomain struct {
	deviceRepo repository.DeviceRepository
}

func NewDeviceDomain(deviceRepo repository.DeviceRepository) *deviceDomain {
	return &deviceDomain{deviceRepo: deviceRepo}
}

func (d *deviceDomain) Register(
	ctx context.Context, req *model.RegisterDeviceRequest,
) (*model.RegisterDeviceResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	if !expo.IsPushToken(req.Token) {
		return nil, errorx.New(errorx.BadRequest, "Invalid push token")
	}

	if req.Platform != entity.PlatformIOS && req.Platform != entity.PlatformAndroid {
		return nil, errorx.New(errorx.BadRequest, "Invalid platform %s", req.Platform)
	}

	err := d.deviceRepo.Upsert(ctx, &entity.Device{
		Base:     entity.Base{ID: uuid.NewString()},
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
		IsActive: true,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert device: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RegisterDeviceResponse{}, nil
}

func (d *deviceDomain) Remove(
	ctx context.Context, req *model.RemoveDeviceRequest,
) (*model.RemoveDeviceResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	if err := d.deviceRepo.DeleteByToken(ctx, userID, req.Token); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete device: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RemoveDeviceResponse{}, nil
}
