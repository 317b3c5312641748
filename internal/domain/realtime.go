package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/intranet-lab/backend/internal/common"
	"github.com/intranet-lab/backend/internal/model"
	"github.com/intranet-lab/backend/internal/notification"
	"github.com/intranet-lab/backend/internal/realtime"
	"github.com/intranet-lab/backend/internal/realtime/directive"
	"github.com/intranet-lab/backend/internal/realtime/event"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/errorx"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RealtimeDomain interface {
	Serve(ctx context.Context, req *model.ServeRealtimeRequest) error
}

type realtimeDomain struct {
	connections *realtime.ConnectionRegistry
	rooms       *realtime.RoomRegistry
	broadcaster *realtime.Broadcaster
	coordinator *notification.Coordinator

	userRepo       repository.UserRepository
	chatThreadRepo repository.ChatThreadRepository
}

func NewRealtimeDomain(
	connections *realtime.ConnectionRegistry,
	rooms *realtime.RoomRegistry,
	broadcaster *realtime.Broadcaster,
	coordinator *notification.Coordinator,
	userRepo repository.UserRepository,
	chatThreadRepo repository.ChatThreadRepository,
) *realtimeDomain {
	return &realtimeDomain{
		connections:    connections,
		rooms:          rooms,
		broadcaster:    broadcaster,
		coordinator:    coordinator,
		userRepo:       userRepo,
		chatThreadRepo: chatThreadRepo,
	}
}

// Serve owns one websocket connection from handshake to close. It registers
// the connection, re-derives the user's thread rooms, emits a welcome event,
// then pumps inbound directives until the channel closes. The unregister in
// the defer also covers abnormal disconnects.
func (d *realtimeDomain) Serve(ctx context.Context, _ *model.ServeRealtimeRequest) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	if _, err := d.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return errorx.Unknown
	}

	wsClient := xcontext.WSClient(ctx)
	if wsClient == nil {
		return errorx.Unknown
	}

	conn := realtime.NewConnection(userID, wsClient)
	d.connections.Register(ctx, conn)
	defer d.connections.Unregister(ctx, conn)

	threads, err := d.chatThreadRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get threads of %s: %v", userID, err)
		return errorx.Unknown
	}

	joinedRooms := []string{}
	for _, thread := range threads {
		roomID := common.ThreadRoomID(thread.ID)
		d.rooms.Join(userID, roomID)
		joinedRooms = append(joinedRooms, roomID)
	}

	d.broadcaster.SendToUser(ctx, userID, event.New(
		&event.WelcomeEvent{UserID: userID, Rooms: joinedRooms},
		event.Metadata{ToUser: userID},
	))

	for {
		req, ok := <-wsClient.R
		if !ok {
			return nil
		}

		var serverDirective directive.ServerDirective
		if err := json.Unmarshal(req, &serverDirective); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot unmarshal directive: %v", err)
			continue
		}

		switch serverDirective.Op {
		case directive.PingDirectiveOp:

		case directive.JoinRoomDirectiveOp:
			var joinDirective directive.JoinRoomDirective
			if err := json.Unmarshal(serverDirective.Data, &joinDirective); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot unmarshal join room data: %v", err)
				continue
			}

			d.joinRoom(ctx, userID, joinDirective.RoomID)

		case directive.LeaveRoomDirectiveOp:
			var leaveDirective directive.LeaveRoomDirective
			if err := json.Unmarshal(serverDirective.Data, &leaveDirective); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot unmarshal leave room data: %v", err)
				continue
			}

			d.leaveRoom(ctx, userID, leaveDirective.RoomID)

		case directive.SendMessageDirectiveOp:
			var messageDirective directive.SendMessageDirective
			if err := json.Unmarshal(serverDirective.Data, &messageDirective); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot unmarshal send message data: %v", err)
				continue
			}

			d.sendMessage(ctx, userID, messageDirective)

		default:
			xcontext.Logger(ctx).Warnf("Unknown directive op %d", serverDirective.Op)
		}
	}
}

func (d *realtimeDomain) joinRoom(ctx context.Context, userID, roomID string) {
	d.rooms.Join(userID, roomID)
	d.broadcaster.SendToRoom(ctx, roomID, event.New(
		&event.RoomJoinedEvent{RoomID: roomID, UserID: userID},
		event.Metadata{ToRoom: roomID},
	))
}

func (d *realtimeDomain) leaveRoom(ctx context.Context, userID, roomID string) {
	// Broadcast before removal so the leaver also sees the event.
	d.broadcaster.SendToRoom(ctx, roomID, event.New(
		&event.RoomLeftEvent{RoomID: roomID, UserID: userID},
		event.Metadata{ToRoom: roomID},
	))
	d.rooms.Leave(userID, roomID)
}

func (d *realtimeDomain) sendMessage(
	ctx context.Context, senderID string, messageDirective directive.SendMessageDirective,
) {
	thread, err := d.chatThreadRepo.GetByID(ctx, messageDirective.ThreadID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get thread %s: %v", messageDirective.ThreadID, err)
		return
	}

	memberIDs, err := d.chatThreadRepo.GetMemberIDs(ctx, thread.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get members of thread %s: %v", thread.ID, err)
		return
	}

	isMember := false
	for _, memberID := range memberIDs {
		if memberID == senderID {
			isMember = true
			break
		}
	}

	if !isMember {
		xcontext.Logger(ctx).Warnf("User %s is not a member of thread %s", senderID, thread.ID)
		return
	}

	// Auto-join-on-activity: every thread member joins the room, so members
	// who never connected since the thread was created still receive the
	// fan-out.
	roomID := common.ThreadRoomID(thread.ID)
	for _, memberID := range memberIDs {
		d.rooms.Join(memberID, roomID)
	}

	messageEvent := &event.NewMessageEvent{
		ID:        xcontext.SnowFlake(ctx).Generate().Int64(),
		ThreadID:  thread.ID,
		SenderID:  senderID,
		Content:   messageDirective.Content,
		CreatedAt: time.Now(),
	}

	summary, err := d.coordinator.Notify(ctx, &notification.Envelope{
		ToRoom:  roomID,
		Kind:    notification.KindChatMessage,
		ActorID: senderID,
		Data: map[string]string{
			"sender_name": senderID,
			"content":     messageDirective.Content,
			"thread_id":   thread.ID,
		},
		DedupeKey: fmt.Sprintf("chat_message:%d", messageEvent.ID),
		Event:     messageEvent,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot notify message of thread %s: %v", thread.ID, err)
		return
	}

	xcontext.Logger(ctx).Debugf("Message %d fanned out: socket=%d push=%d/%d",
		messageEvent.ID, summary.SocketDelivered, summary.PushSuccess, summary.PushTotal)
}
