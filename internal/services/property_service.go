package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/events"
	"github.com/rentnest/rentnest-server/internal/metrics"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/repository"
)

// ViewPublisher emits analytics events for recorded views.
type ViewPublisher interface {
	PublishPropertyViewed(ctx context.Context, ev events.PropertyViewed) error
}

// PropertyInput carries the add/edit listing form fields.
type PropertyInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PropertyType string   `json:"property_type"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zip_code"`
	Price        float64  `json:"price"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	SquareFeet   int      `json:"square_feet"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
	Available    *bool    `json:"available"`
}

// PropertyDetail is the listing page payload.
type PropertyDetail struct {
	Property      *models.Property      `json:"property"`
	Landlord      models.ProfileSummary `json:"landlord"`
	InterestCount int64                 `json:"interest_count"`
	Interested    bool                  `json:"interested"`
}

type PropertyService struct {
	props     repository.PropertyRepository
	profiles  repository.ProfileRepository
	analytics repository.AnalyticsRepository
	publisher ViewPublisher
	log       *zap.SugaredLogger
}

func NewPropertyService(
	props repository.PropertyRepository,
	profiles repository.ProfileRepository,
	analytics repository.AnalyticsRepository,
	publisher ViewPublisher,
	log *zap.SugaredLogger,
) *PropertyService {
	return &PropertyService{
		props:     props,
		profiles:  profiles,
		analytics: analytics,
		publisher: publisher,
		log:       log,
	}
}

func (in *PropertyInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title required", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" || strings.TrimSpace(in.City) == "" {
		return fmt.Errorf("%w: address and city required", apperr.ErrValidation)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", apperr.ErrValidation)
	}
	return nil
}

// Create adds a listing owned by the caller; landlord role required.
func (s *PropertyService) Create(ctx context.Context, callerID, callerRole string, in PropertyInput) (*models.Property, error) {
	if callerRole != models.RoleLandlord {
		return nil, apperr.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &models.Property{
		ID:           uuid.NewString(),
		LandlordID:   callerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		PropertyType: in.PropertyType,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Price:        in.Price,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		SquareFeet:   in.SquareFeet,
		Amenities:    in.Amenities,
		Images:       in.Images,
		Available:    true,
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if err := s.props.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) List(ctx context.Context, f models.PropertyFilter) ([]*models.Property, error) {
	return s.props.List(ctx, f)
}

// Detail fetches one listing with landlord summary and interest stats, and
// records the view. Analytics failures are logged, never returned: the page
// still renders.
func (s *PropertyService) Detail(ctx context.Context, propertyID, viewerID, sessionID string) (*PropertyDetail, error) {
	p, err := s.props.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	landlord, err := s.profiles.Get(ctx, p.LandlordID)
	if err != nil {
		return nil, err
	}

	d := &PropertyDetail{Property: p, Landlord: landlord.Summary()}
	if n, err := s.analytics.InterestCount(ctx, propertyID); err == nil {
		d.InterestCount = n
	}
	if viewerID != "" {
		if ok, err := s.analytics.HasInterest(ctx, propertyID, viewerID); err == nil {
			d.Interested = ok
		}
	}

	s.trackView(ctx, propertyID, viewerID, sessionID)
	return d, nil
}

func (s *PropertyService) trackView(ctx context.Context, propertyID, viewerID, sessionID string) {
	v := &models.PropertyView{PropertyID: propertyID, UserID: viewerID, SessionID: sessionID}
	if err := s.analytics.RecordView(ctx, v); err != nil {
		s.log.Warnw("view record failed", "property", propertyID, "err", err)
		return
	}
	metrics.PropertyViews.Inc()
	ev := events.PropertyViewed{
		PropertyID: propertyID,
		UserID:     viewerID,
		SessionID:  sessionID,
		ViewedAt:   time.Now().UTC(),
	}
	if err := s.publisher.PublishPropertyViewed(ctx, ev); err != nil {
		s.log.Warnw("property.viewed publish failed", "property", propertyID, "err", err)
	}
}

// Update replaces the mutable fields of a listing the caller owns.
func (s *PropertyService) Update(ctx context.Context, callerID, propertyID string, in PropertyInput) (*models.Property, error) {
	p, err := s.props.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p.LandlordID != callerID {
		return nil, apperr.ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.PropertyType = in.PropertyType
	p.Address = in.Address
	p.City = in.City
	p.State = in.State
	p.ZipCode = in.ZipCode
	p.Price = in.Price
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.SquareFeet = in.SquareFeet
	p.Amenities = in.Amenities
	p.Images = in.Images
	if in.Available != nil {
		p.Available = *in.Available
	}
	if err := s.props.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) Delete(ctx context.Context, callerID, propertyID string) error {
	p, err := s.props.Get(ctx, propertyID)
	if err != nil {
		return err
	}
	if p.LandlordID != callerID {
		return apperr.ErrForbidden
	}
	return s.props.Delete(ctx, propertyID)
}

// SetInterest toggles the caller's interest in a listing.
func (s *PropertyService) SetInterest(ctx context.Context, callerID, propertyID, contactMethod string, interested bool) error {
	if _, err := s.props.Get(ctx, propertyID); err != nil {
		return err
	}
	if interested {
		return s.analytics.AddInterest(ctx, propertyID, callerID, contactMethod)
	}
	return s.analytics.RemoveInterest(ctx, propertyID, callerID)
}
