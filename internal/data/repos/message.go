package repos

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/pkg/dbctx"
	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

type MessageRepo interface {
	// Create appends rows in the given order. Insertion order is what
	// keeps (sent_at, id) ascending coherent for later reads.
	Create(dbc dbctx.Context, rows []*domain.Message) ([]*domain.Message, error)
	ListByConversation(dbc dbctx.Context, conversationID int64) ([]*domain.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(dbc dbctx.Context, rows []*domain.Message) ([]*domain.Message, error) {
	if len(rows) == 0 {
		return []*domain.Message{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	for _, row := range rows {
		if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (r *messageRepo) ListByConversation(dbc dbctx.Context, conversationID int64) ([]*domain.Message, error) {
	if conversationID <= 0 {
		return nil, fmt.Errorf("missing conversation id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*domain.Message
	if err := txx.WithContext(dbc.Ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
