package domain

import (
	"context"

	"github.com/intranet-lab/backend/internal/model"
	"github.com/intranet-lab/backend/internal/notification"
	"github.com/intranet-lab/backend/pkg/errorx"
	"github.com/intranet-lab/backend/pkg/xcontext"
)

type NotificationDomain interface {
	Notify(ctx context.Context, req *model.NotifyRequest) (*model.NotifyResponse, error)
}

type notificationDomain struct {
	coordinator *notification.Coordinator
}

func NewNotificationDomain(coordinator *notification.Coordinator) *notificationDomain {
	return &notificationDomain{coordinator: coordinator}
}

func (d *notificationDomain) Notify(
	ctx context.Context, req *model.NotifyRequest,
) (*model.NotifyResponse, error) {
	if req.Kind == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a notification kind")
	}

	actorID := req.ActorID
	if actorID == "" {
		actorID = xcontext.RequestUserID(ctx)
	}

	summary, err := d.coordinator.Notify(ctx, &notification.Envelope{
		ToUser:    req.ToUser,
		ToRoom:    req.ToRoom,
		Kind:      req.Kind,
		ActorID:   actorID,
		Title:     req.Title,
		Body:      req.Body,
		Data:      req.Data,
		DedupeKey: req.DedupeKey,
	})
	if err != nil {
		return nil, err
	}

	return &model.NotifyResponse{
		RateLimited:     summary.RateLimited,
		Deduplicated:    summary.Deduplicated,
		SocketDelivered: summary.SocketDelivered,
		PushSuccess:     summary.PushSuccess,
		PushTotal:       summary.PushTotal,
	}, nil
}
