package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
)

const maxMessageLen = 2000

// MessageService implements circle chat messages.
type MessageService struct {
	messageRepo repository.MessageRepository
	circleRepo  repository.CircleRepository
	userRepo    repository.UserRepository
	renderer    *Renderer
	notifier    *notifications.Notifier
}

// CreateMessageInput carries a new circle message. A nil IsAnonymous defaults
// to the inverse of the author's show_real_name preference.
type CreateMessageInput struct {
	Viewer      Viewer
	CircleID    uint
	Content     string
	IsAnonymous *bool
}

// NewMessageService returns a new MessageService.
func NewMessageService(
	messageRepo repository.MessageRepository,
	circleRepo repository.CircleRepository,
	userRepo repository.UserRepository,
	renderer *Renderer,
	notifier *notifications.Notifier,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		circleRepo:  circleRepo,
		userRepo:    userRepo,
		renderer:    renderer,
		notifier:    notifier,
	}
}

func (s *MessageService) requireMember(ctx context.Context, v Viewer, circleID uint) error {
	if _, err := s.circleRepo.GetByID(ctx, circleID); err != nil {
		return err
	}
	if v.IsStaff {
		return nil
	}
	m, err := s.circleRepo.GetMembership(ctx, circleID, v.ID)
	if err != nil {
		return err
	}
	if m == nil || !m.Role.IsActive() {
		return models.NewForbiddenError("Only circle members can access messages")
	}
	return nil
}

// CreateMessage stores a circle message and fans it out to connected members
// via redis pub/sub. Delivery is best-effort; the write is authoritative.
func (s *MessageService) CreateMessage(ctx context.Context, in CreateMessageInput) (*MessageItem, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 2000 characters)")
	}

	if err := s.requireMember(ctx, in.Viewer, in.CircleID); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.Viewer.ID)
	if err != nil {
		return nil, err
	}

	anonymous := !author.ShowRealName
	if in.IsAnonymous != nil {
		anonymous = *in.IsAnonymous
	}

	msg := &models.Message{
		CircleID:    in.CircleID,
		UserID:      in.Viewer.ID,
		Content:     in.Content,
		IsAnonymous: anonymous,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	created, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	item := s.renderer.RenderMessage(ctx, in.Viewer, created)

	if s.notifier != nil {
		// Hub-side rendering redacts per recipient; the wire payload carries
		// the anonymous-safe projection
		wire := s.renderer.RenderMessage(ctx, Viewer{}, created)
		if payload, marshalErr := json.Marshal(wire); marshalErr == nil {
			if pubErr := s.notifier.PublishCircleMessage(ctx, in.CircleID, string(payload)); pubErr != nil {
				slog.WarnContext(ctx, "failed to publish circle message",
					slog.Any("circle_id", in.CircleID), slog.String("error", pubErr.Error()))
			}
		}
	}

	return &item, nil
}

// ListMessages returns a circle's messages newest-first for the viewer.
func (s *MessageService) ListMessages(ctx context.Context, v Viewer, circleID uint, limit, offset int) ([]MessageItem, error) {
	if err := s.requireMember(ctx, v, circleID); err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListByCircle(ctx, circleID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderMessages(ctx, v, msgs), nil
}
