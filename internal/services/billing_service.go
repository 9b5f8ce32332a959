package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/metrics"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/payments"
	"github.com/rentnest/rentnest-server/internal/plans"
	"github.com/rentnest/rentnest-server/internal/repository"
)

// Charger is the payment provider boundary.
type Charger interface {
	Charge(ctx context.Context, req payments.ChargeRequest) (*payments.ChargeResult, error)
}

type BillingService struct {
	catalog  *plans.Catalog
	charger  Charger
	subs     repository.SubscriptionRepository
	profiles repository.ProfileRepository
	log      *zap.SugaredLogger
}

func NewBillingService(
	catalog *plans.Catalog,
	charger Charger,
	subs repository.SubscriptionRepository,
	profiles repository.ProfileRepository,
	log *zap.SugaredLogger,
) *BillingService {
	return &BillingService{catalog: catalog, charger: charger, subs: subs, profiles: profiles, log: log}
}

func (s *BillingService) Plans() []plans.Plan {
	return s.catalog.All()
}

// Subscribe charges the caller for a plan and activates it on their profile.
func (s *BillingService) Subscribe(ctx context.Context, userID, planID, method string) (*models.Subscription, error) {
	plan, ok := s.catalog.Get(planID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown plan %q", apperr.ErrValidation, planID)
	}
	if !payments.Methods[method] {
		return nil, fmt.Errorf("%w: unsupported payment method %q", apperr.ErrValidation, method)
	}

	res, err := s.charger.Charge(ctx, payments.ChargeRequest{
		UserID:    userID,
		PlanID:    plan.ID,
		Method:    method,
		AmountUSD: plan.PriceUSD,
	})
	if err != nil {
		metrics.PaymentsProcessed.WithLabelValues("failed").Inc()
		if errors.Is(err, payments.ErrDeclined) {
			return nil, fmt.Errorf("%w: payment declined", apperr.ErrValidation)
		}
		return nil, err
	}
	metrics.PaymentsProcessed.WithLabelValues("succeeded").Inc()

	sub := &models.Subscription{
		ID:            uuid.NewString(),
		UserID:        userID,
		PlanID:        plan.ID,
		PaymentMethod: method,
		AmountUSD:     plan.PriceUSD,
		PaymentRef:    res.Reference,
		Status:        models.SubscriptionActive,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		// charge went through; record loss is an ops problem, not the user's
		s.log.Errorw("subscription record failed after charge", "user", userID, "ref", res.Reference, "err", err)
	}
	if err := s.profiles.SetSubscription(ctx, userID, plan.ID, models.SubscriptionActive); err != nil {
		// same stance: the user paid, so the subscription stands
		s.log.Errorw("profile activation failed after charge", "user", userID, "ref", res.Reference, "err", err)
	}
	return sub, nil
}

func (s *BillingService) History(ctx context.Context, userID string) ([]*models.Subscription, error) {
	return s.subs.ListForUser(ctx, userID)
}
