package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/metrics"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/repository"
)

// MessagePublisher is the cross-instance fanout path for appended messages.
type MessagePublisher interface {
	PublishMessageSent(ctx context.Context, m *models.Message) error
}

// Deliverer is the local fanout path (the websocket hub).
type Deliverer interface {
	Deliver(m *models.Message)
}

// ConversationDetail is what a participant sees when opening a thread.
type ConversationDetail struct {
	Conversation *models.Conversation  `json:"conversation"`
	Property     *models.Property      `json:"property"`
	Counterpart  models.ProfileSummary `json:"counterpart"`
}

type ChatService struct {
	convs     repository.ConversationRepository
	msgs      repository.MessageRepository
	props     repository.PropertyRepository
	profiles  repository.ProfileRepository
	deliverer Deliverer
	publisher MessagePublisher
	log       *zap.SugaredLogger
}

func NewChatService(
	convs repository.ConversationRepository,
	msgs repository.MessageRepository,
	props repository.PropertyRepository,
	profiles repository.ProfileRepository,
	deliverer Deliverer,
	publisher MessagePublisher,
	log *zap.SugaredLogger,
) *ChatService {
	return &ChatService{
		convs:     convs,
		msgs:      msgs,
		props:     props,
		profiles:  profiles,
		deliverer: deliverer,
		publisher: publisher,
		log:       log,
	}
}

// Resolve finds or creates the conversation between callerID and the landlord
// of propertyID. The landlord is derived from the property, never taken from
// the caller. A landlord opening their own listing gets a validation error
// and no record.
func (s *ChatService) Resolve(ctx context.Context, callerID, propertyID string) (*models.Conversation, error) {
	if callerID == "" || propertyID == "" {
		return nil, fmt.Errorf("%w: missing property id", apperr.ErrValidation)
	}
	prop, err := s.props.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop.LandlordID == callerID {
		return nil, fmt.Errorf("%w: cannot start a conversation on your own listing", apperr.ErrValidation)
	}
	return s.convs.Resolve(ctx, propertyID, callerID, prop.LandlordID)
}

// Append validates and stores one message, then fans it out. Fanout failures
// degrade to refresh-on-send behavior for remote viewers and are never
// surfaced to the sender.
func (s *ChatService) Append(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", apperr.ErrValidation)
	}
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, apperr.ErrForbidden
	}

	m, err := s.msgs.Insert(ctx, conversationID, senderID, content)
	if err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	s.deliverer.Deliver(m)
	if err := s.publisher.PublishMessageSent(ctx, m); err != nil {
		s.log.Warnw("message.sent publish failed", "conversation", conversationID, "err", err)
	}
	return m, nil
}

// History returns the ordered thread for a participant.
func (s *ChatService) History(ctx context.Context, conversationID, callerID string) ([]*models.Message, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, apperr.ErrForbidden
	}
	return s.msgs.ListByConversation(ctx, conversationID)
}

// Authorize loads the conversation and checks membership; the websocket
// endpoint uses it before subscribing.
func (s *ChatService) Authorize(ctx context.Context, conversationID, callerID string) (*models.Conversation, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, apperr.ErrForbidden
	}
	return conv, nil
}

// Detail resolves the thread header: property and the other participant.
func (s *ChatService) Detail(ctx context.Context, conversationID, callerID string) (*ConversationDetail, error) {
	conv, err := s.Authorize(ctx, conversationID, callerID)
	if err != nil {
		return nil, err
	}
	prop, err := s.props.Get(ctx, conv.PropertyID)
	if err != nil {
		return nil, err
	}
	other, err := s.profiles.Get(ctx, conv.Counterpart(callerID))
	if err != nil {
		return nil, err
	}
	return &ConversationDetail{
		Conversation: conv,
		Property:     prop,
		Counterpart:  other.Summary(),
	}, nil
}

// ListForUser lists all conversations the caller participates in.
func (s *ChatService) ListForUser(ctx context.Context, callerID string) ([]*models.Conversation, error) {
	return s.convs.ListForUser(ctx, callerID)
}

// MarkRead flags the counterpart's messages as read.
func (s *ChatService) MarkRead(ctx context.Context, conversationID, callerID string) error {
	if _, err := s.Authorize(ctx, conversationID, callerID); err != nil {
		return err
	}
	return s.msgs.MarkRead(ctx, conversationID, callerID)
}
