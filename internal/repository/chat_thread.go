package repository

import (
	"context"

	"github.com/intranet-lab/backend/internal/entity"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type ChatThreadRepository interface {
	Create(ctx context.Context, thread *entity.ChatThread, memberIDs []string) error
	GetByID(ctx context.Context, id string) (*entity.ChatThread, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.ChatThread, error)
	GetMemberIDs(ctx context.Context, threadID string) ([]string, error)
	AddMember(ctx context.Context, threadID, userID string) error
	RemoveMember(ctx context.Context, threadID, userID string) error
}

type chatThreadRepository struct{}

func NewChatThreadRepository() *chatThreadRepository {
	return &chatThreadRepository{}
}

func (r *chatThreadRepository) Create(
	ctx context.Context, thread *entity.ChatThread, memberIDs []string,
) error {
	if err := xcontext.DB(ctx).Create(thread).Error; err != nil {
		return err
	}

	for _, userID := range memberIDs {
		if err := r.AddMember(ctx, thread.ID, userID); err != nil {
			return err
		}
	}

	return nil
}

func (r *chatThreadRepository) GetByID(ctx context.Context, id string) (*entity.ChatThread, error) {
	var result entity.ChatThread
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *chatThreadRepository) GetByUserID(ctx context.Context, userID string) ([]entity.ChatThread, error) {
	var result []entity.ChatThread
	err := xcontext.DB(ctx).Model(&entity.ChatThread{}).
		Joins("join chat_thread_members on chat_thread_members.thread_id=chat_threads.id").
		Where("chat_thread_members.user_id=?", userID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *chatThreadRepository) GetMemberIDs(ctx context.Context, threadID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.ChatThreadMember{}).
		Where("thread_id=?", threadID).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *chatThreadRepository) AddMember(ctx context.Context, threadID, userID string) error {
	member := &entity.ChatThreadMember{ThreadID: threadID, UserID: userID}
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
}

func (r *chatThreadRepository) RemoveMember(ctx context.Context, threadID, userID string) error {
	return xcontext.DB(ctx).
		Where("thread_id=? AND user_id=?", threadID, userID).
		Delete(&entity.ChatThreadMember{}).Error
}
