package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mall-service/internal/models"
)

type fakePromotionRepo struct {
	promos map[int64]*models.Promotion
	nextID int64
}

func newFakePromotionRepo() *fakePromotionRepo {
	return &fakePromotionRepo{promos: make(map[int64]*models.Promotion)}
}

func (f *fakePromotionRepo) ListByStore(_ context.Context, storeID int64, limit int) ([]models.Promotion, error) {
	var out []models.Promotion
	for _, p := range f.promos {
		if p.StoreID == storeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePromotionRepo) ListForModeration(_ context.Context, limit int) ([]models.Promotion, error) {
	var out []models.Promotion
	for _, p := range f.promos {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePromotionRepo) GetByID(_ context.Context, id int64) (*models.Promotion, error) {
	p, ok := f.promos[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePromotionRepo) Create(_ context.Context, promo *models.Promotion) error {
	f.nextID++
	promo.ID = f.nextID
	copied := *promo
	f.promos[promo.ID] = &copied
	return nil
}

func (f *fakePromotionRepo) Update(_ context.Context, promo *models.Promotion) error {
	copied := *promo
	f.promos[promo.ID] = &copied
	return nil
}

func TestPromotionService_Create_StartsPending(t *testing.T) {
	repo := newFakePromotionRepo()
	svc := NewPromotionService(repo, nil, quietLogger())

	promo, err := svc.Create(context.Background(), 1, 5, CreateInput{
		Title: "Summer Sale",
		Type:  "PERCENT",
		Value: models.Money(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PromoPending, promo.Status)
	assert.Equal(t, int64(5), promo.CreatedByID)
	assert.Nil(t, promo.CouponCode, "coupon code only kept for COUPON promotions")
}

func TestPromotionService_Create_Validation(t *testing.T) {
	svc := NewPromotionService(newFakePromotionRepo(), nil, quietLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, 5, CreateInput{Title: "x", Type: "PERCENT"})
	_, ok := IsBadRequestError(err)
	assert.True(t, ok, "title too short")

	_, err = svc.Create(ctx, 1, 5, CreateInput{Title: "Sale", Type: "BOGUS"})
	_, ok = IsBadRequestError(err)
	assert.True(t, ok, "unknown type")

	promo, err := svc.Create(ctx, 1, 5, CreateInput{Title: "Coupon Sale", Type: "COUPON"})
	require.NoError(t, err)
	assert.Nil(t, promo.CouponCode, "COUPON without a code stores null")

	code := "SAVE10"
	promo, err = svc.Create(ctx, 1, 5, CreateInput{Title: "Coupon Sale", Type: "COUPON", CouponCode: &code})
	require.NoError(t, err)
	require.NotNil(t, promo.CouponCode)
	assert.Equal(t, "SAVE10", *promo.CouponCode)
}

func TestPromotionService_Decide_NotFound(t *testing.T) {
	svc := NewPromotionService(newFakePromotionRepo(), nil, quietLogger())

	_, err := svc.Decide(context.Background(), 9, 42, "ACTIVE", nil)
	notFound, ok := IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "Promotion not found", notFound.Message)
}

func TestPromotionService_Decide_InvalidStatus(t *testing.T) {
	repo := newFakePromotionRepo()
	svc := NewPromotionService(repo, nil, quietLogger())
	promo, err := svc.Create(context.Background(), 1, 5, CreateInput{Title: "Sale", Type: "AMOUNT"})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), 9, promo.ID, "PENDING", nil)
	_, ok := IsBadRequestError(err)
	assert.True(t, ok, "PENDING is not a decision")
}

func TestPromotionService_Decide_RejectDefaultsReason(t *testing.T) {
	repo := newFakePromotionRepo()
	svc := NewPromotionService(repo, nil, quietLogger())
	promo, err := svc.Create(context.Background(), 1, 5, CreateInput{Title: "Sale", Type: "AMOUNT"})
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), 9, promo.ID, "REJECTED", nil)
	require.NoError(t, err)
	assert.Equal(t, models.PromoRejected, decided.Status)
	require.NotNil(t, decided.RejectReason)
	assert.Equal(t, "No reason provided", *decided.RejectReason)
	require.NotNil(t, decided.ApprovedByID)
	assert.Equal(t, int64(9), *decided.ApprovedByID)
}

func TestPromotionService_Decide_ActiveClearsReason(t *testing.T) {
	repo := newFakePromotionRepo()
	svc := NewPromotionService(repo, nil, quietLogger())
	promo, err := svc.Create(context.Background(), 1, 5, CreateInput{Title: "Sale", Type: "AMOUNT"})
	require.NoError(t, err)

	reason := "low quality banner"
	_, err = svc.Decide(context.Background(), 9, promo.ID, "REJECTED", &reason)
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), 9, promo.ID, "ACTIVE", nil)
	require.NoError(t, err)
	assert.Equal(t, models.PromoActive, decided.Status)
	assert.Nil(t, decided.RejectReason, "non-REJECTED decision clears the reason")
}
