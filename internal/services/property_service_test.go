package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/models"
)

type propFixture struct {
	svc       *PropertyService
	props     *fakePropertyRepo
	profiles  *fakeProfileRepo
	analytics *fakeAnalyticsRepo
	publisher *capturePublisher
}

func newPropFixture(t *testing.T) *propFixture {
	t.Helper()
	f := &propFixture{
		props:     newFakePropertyRepo(),
		profiles:  newFakeProfileRepo(),
		analytics: newFakeAnalyticsRepo(),
		publisher: &capturePublisher{},
	}
	f.svc = NewPropertyService(f.props, f.profiles, f.analytics, f.publisher, zap.NewNop().Sugar())
	return f
}

func (f *propFixture) addProfile(t *testing.T, role string) *models.Profile {
	t.Helper()
	p := &models.Profile{ID: uuid.NewString(), Email: uuid.NewString() + "@x.test", FullName: "Someone", Role: role}
	require.NoError(t, f.profiles.Create(context.Background(), p))
	return p
}

func validInput() PropertyInput {
	return PropertyInput{
		Title:        "Sunny 2BR",
		PropertyType: "apartment",
		Address:      "12 Baker St",
		City:         "Harare",
		Price:        450,
		Bedrooms:     2,
		Amenities:    []string{"parking"},
	}
}

func TestCreateRequiresLandlordRole(t *testing.T) {
	f := newPropFixture(t)
	tenant := f.addProfile(t, models.RoleTenant)

	_, err := f.svc.Create(context.Background(), tenant.ID, models.RoleTenant, validInput())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newPropFixture(t)
	landlord := f.addProfile(t, models.RoleLandlord)

	in := validInput()
	in.Title = "  "
	_, err := f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	in = validInput()
	in.Price = 0
	_, err = f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateDefaultsToAvailable(t *testing.T) {
	f := newPropFixture(t)
	landlord := f.addProfile(t, models.RoleLandlord)

	p, err := f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, validInput())
	require.NoError(t, err)
	assert.True(t, p.Available)
	assert.Equal(t, landlord.ID, p.LandlordID)
}

func TestDetailRecordsViewAndPublishes(t *testing.T) {
	f := newPropFixture(t)
	landlord := f.addProfile(t, models.RoleLandlord)
	p, err := f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, validInput())
	require.NoError(t, err)

	d, err := f.svc.Detail(context.Background(), p.ID, "viewer-1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, d.Property.ID)
	assert.Equal(t, landlord.ID, d.Landlord.ID)

	require.Len(t, f.analytics.views, 1)
	assert.Equal(t, p.ID, f.analytics.views[0].PropertyID)
	require.Len(t, f.publisher.views, 1)
	assert.Equal(t, "sess-1", f.publisher.views[0].SessionID)
}

func TestDetailSurvivesAnalyticsFailure(t *testing.T) {
	f := newPropFixture(t)
	landlord := f.addProfile(t, models.RoleLandlord)
	p, err := f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, validInput())
	require.NoError(t, err)

	f.analytics.failViews = true
	d, err := f.svc.Detail(context.Background(), p.ID, "", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, d.Property.ID)
	assert.Empty(t, f.publisher.views)
}

func TestUpdateOnlyByOwner(t *testing.T) {
	f := newPropFixture(t)
	landlord := f.addProfile(t, models.RoleLandlord)
	other := f.addProfile(t, models.RoleLandlord)
	p, err := f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Price = 500
	_, err = f.svc.Update(context.Background(), other.ID, p.ID, in)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := f.svc.Update(context.Background(), landlord.ID, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, float64(500), updated.Price)
}

func TestDeleteOnlyByOwner(t *testing.T) {
	f := newPropFixture(t)
	landlord := f.addProfile(t, models.RoleLandlord)
	other := f.addProfile(t, models.RoleLandlord)
	p, err := f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), other.ID, p.ID), apperr.ErrForbidden)
	require.NoError(t, f.svc.Delete(context.Background(), landlord.ID, p.ID))
	_, err = f.props.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInterestToggle(t *testing.T) {
	f := newPropFixture(t)
	landlord := f.addProfile(t, models.RoleLandlord)
	p, err := f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, validInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.SetInterest(context.Background(), "tenant-1", p.ID, "whatsapp", true))
	n, err := f.analytics.InterestCount(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// re-adding stays at one
	require.NoError(t, f.svc.SetInterest(context.Background(), "tenant-1", p.ID, "whatsapp", true))
	n, _ = f.analytics.InterestCount(context.Background(), p.ID)
	assert.Equal(t, int64(1), n)

	require.NoError(t, f.svc.SetInterest(context.Background(), "tenant-1", p.ID, "", false))
	n, _ = f.analytics.InterestCount(context.Background(), p.ID)
	assert.Equal(t, int64(0), n)
}

func TestListFilters(t *testing.T) {
	f := newPropFixture(t)
	landlord := f.addProfile(t, models.RoleLandlord)

	cheap := validInput()
	cheap.Price = 300
	exp := validInput()
	exp.Price = 900
	exp.City = "Bulawayo"

	_, err := f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, cheap)
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), landlord.ID, models.RoleLandlord, exp)
	require.NoError(t, err)

	out, err := f.svc.List(context.Background(), models.PropertyFilter{City: "Harare"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, float64(300), out[0].Price)

	out, err = f.svc.List(context.Background(), models.PropertyFilter{MinPrice: 500})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Bulawayo", out[0].City)
}
