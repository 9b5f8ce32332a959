package services

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/events"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/payments"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// In-memory doubles for the Mongo repositories. They honor the same
// contracts: the resolver triple is unique, messages are immutable and
// ordered by (created_at, id).

type fakeConversationRepo struct {
	mu    sync.Mutex
	byKey map[[3]string]*models.Conversation
	byID  map[string]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		byKey: make(map[[3]string]*models.Conversation),
		byID:  make(map[string]*models.Conversation),
	}
}

func (r *fakeConversationRepo) Resolve(_ context.Context, propertyID, tenantID, landlordID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [3]string{propertyID, tenantID, landlordID}
	if c, ok := r.byKey[key]; ok {
		return c, nil
	}
	c := &models.Conversation{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		TenantID:   tenantID,
		LandlordID: landlordID,
		CreatedAt:  time.Now().UTC(),
	}
	r.byKey[key] = c
	r.byID[c.ID] = c
	return c, nil
}

func (r *fakeConversationRepo) Get(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeConversationRepo) ListForUser(_ context.Context, userID string) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Conversation
	for _, c := range r.byID {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type fakeMessageRepo struct {
	mu   sync.Mutex
	msgs []*models.Message
}

func (r *fakeMessageRepo) Insert(_ context.Context, conversationID, senderID, content string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	r.msgs = append(r.msgs, m)
	return m, nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, conversationID, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ConversationID == conversationID && m.SenderID != readerID {
			m.Read = true
		}
	}
	return nil
}

type fakePropertyRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{byID: make(map[string]*models.Property)}
}

func (r *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.byID[p.ID] = p
	return nil
}

func (r *fakePropertyRepo) Get(_ context.Context, id string) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, apperr.ErrNotFound
}

func (r *fakePropertyRepo) List(_ context.Context, f models.PropertyFilter) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.byID {
		if f.City != "" && p.City != f.City {
			continue
		}
		if f.PropertyType != "" && p.PropertyType != f.PropertyType {
			continue
		}
		if f.LandlordID != "" && p.LandlordID != f.LandlordID {
			continue
		}
		if f.AvailableOnly && !p.Available {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePropertyRepo) Update(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fakePropertyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeProfileRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.Profile
	failSub bool
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: make(map[string]*models.Profile)}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.byID {
		if other.Email == p.Email {
			return apperr.ErrConflict
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) Get(_ context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeProfileRepo) Update(_ context.Context, id string, fullName, phone string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	p.FullName = fullName
	p.Phone = phone
	return p, nil
}

func (r *fakeProfileRepo) SetSubscription(_ context.Context, id, planID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSub {
		return apperr.ErrInternal
	}
	p, ok := r.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	p.SubscriptionPlan = planID
	p.SubscriptionStatus = status
	return nil
}

type fakeAnalyticsRepo struct {
	mu        sync.Mutex
	views     []*models.PropertyView
	interests map[[2]string]bool
	failViews bool
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{interests: make(map[[2]string]bool)}
}

func (r *fakeAnalyticsRepo) RecordView(_ context.Context, v *models.PropertyView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failViews {
		return apperr.ErrInternal
	}
	r.views = append(r.views, v)
	return nil
}

func (r *fakeAnalyticsRepo) AddInterest(_ context.Context, propertyID, userID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interests[[2]string{propertyID, userID}] = true
	return nil
}

func (r *fakeAnalyticsRepo) RemoveInterest(_ context.Context, propertyID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.interests, [2]string{propertyID, userID})
	return nil
}

func (r *fakeAnalyticsRepo) HasInterest(_ context.Context, propertyID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interests[[2]string{propertyID, userID}], nil
}

func (r *fakeAnalyticsRepo) InterestCount(_ context.Context, propertyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.interests {
		if k[0] == propertyID {
			n++
		}
	}
	return n, nil
}

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs []*models.Subscription
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, s *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, s)
	return nil
}

func (r *fakeSubscriptionRepo) ListForUser(_ context.Context, userID string) ([]*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Subscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

// Fanout doubles.

type captureDeliverer struct {
	mu   sync.Mutex
	msgs []*models.Message
}

func (d *captureDeliverer) Deliver(m *models.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, m)
}

func (d *captureDeliverer) delivered() []*models.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*models.Message, len(d.msgs))
	copy(out, d.msgs)
	return out
}

type capturePublisher struct {
	mu       sync.Mutex
	messages []*models.Message
	views    []events.PropertyViewed
	fail     bool
}

func (p *capturePublisher) PublishMessageSent(_ context.Context, m *models.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return apperr.ErrUnavailable
	}
	p.messages = append(p.messages, m)
	return nil
}

func (p *capturePublisher) PublishPropertyViewed(_ context.Context, ev events.PropertyViewed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return apperr.ErrUnavailable
	}
	p.views = append(p.views, ev)
	return nil
}

type fakeCharger struct {
	mu     sync.Mutex
	calls  int
	err    error
	result payments.ChargeResult
}

func (c *fakeCharger) Charge(_ context.Context, _ payments.ChargeRequest) (*payments.ChargeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	res := c.result
	return &res, nil
}
