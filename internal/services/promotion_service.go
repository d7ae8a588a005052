package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"mall-service/internal/models"
)

// PromotionRepository is the persistence surface for promotions.
type PromotionRepository interface {
	ListByStore(ctx context.Context, storeID int64, limit int) ([]models.Promotion, error)
	ListForModeration(ctx context.Context, limit int) ([]models.Promotion, error)
	GetByID(ctx context.Context, id int64) (*models.Promotion, error)
	Create(ctx context.Context, promo *models.Promotion) error
	Update(ctx context.Context, promo *models.Promotion) error
}

// PromotionEvents receives notifications after a moderation decision.
type PromotionEvents interface {
	PromotionDecided(promo *models.Promotion)
}

const (
	storePromotionsListCap = 100
	moderationListCap      = 200
	defaultRejectReason    = "No reason provided"
)

// PromotionService implements the moderation workflow: tenant submissions
// enter PENDING and only an admin decision moves them on.
type PromotionService struct {
	repo   PromotionRepository
	events PromotionEvents
	logger *logrus.Logger
}

func NewPromotionService(repo PromotionRepository, events PromotionEvents, logger *logrus.Logger) *PromotionService {
	return &PromotionService{repo: repo, events: events, logger: logger}
}

// ListByStore returns the store's most recent promotions.
func (s *PromotionService) ListByStore(ctx context.Context, storeID int64) ([]models.Promotion, error) {
	return s.repo.ListByStore(ctx, storeID, storePromotionsListCap)
}

// CreateInput is a validated new-promotion payload.
type CreateInput struct {
	Title      string
	Type       string
	Value      models.Money
	CouponCode *string
	Priority   int
}

// Create submits a promotion in PENDING state. A coupon code is only kept
// for COUPON promotions and may be absent even there.
func (s *PromotionService) Create(ctx context.Context, storeID, createdByID int64, input CreateInput) (*models.Promotion, error) {
	title := strings.TrimSpace(input.Title)
	if len(title) < 2 {
		return nil, NewBadRequestError("title must be at least 2 characters")
	}
	promoType, err := models.ParsePromoType(input.Type)
	if err != nil {
		return nil, NewBadRequestError("type must be PERCENT, AMOUNT, FREESHIP or COUPON")
	}

	var coupon *string
	if promoType == models.PromoCoupon && input.CouponCode != nil {
		if code := strings.TrimSpace(*input.CouponCode); code != "" {
			coupon = &code
		}
	}

	promo := &models.Promotion{
		StoreID:     storeID,
		Title:       title,
		Type:        promoType,
		Value:       input.Value,
		CouponCode:  coupon,
		Status:      models.PromoPending,
		CreatedByID: createdByID,
		Priority:    input.Priority,
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"store_id":     storeID,
		"promotion_id": promo.ID,
		"type":         promoType,
	}).Info("Promotion submitted")
	return promo, nil
}

// ListForModeration returns the admin moderation queue: PENDING first, then
// by priority and recency.
func (s *PromotionService) ListForModeration(ctx context.Context) ([]models.Promotion, error) {
	return s.repo.ListForModeration(ctx, moderationListCap)
}

// Decide applies an admin decision. REJECTED without a reason records
// "No reason provided"; any other decision clears a prior reason.
func (s *PromotionService) Decide(ctx context.Context, adminID, promoID int64, status string, rejectReason *string) (*models.Promotion, error) {
	decision, err := models.ParsePromoDecision(status)
	if err != nil {
		return nil, NewBadRequestError("status must be ACTIVE, REJECTED or STOPPED")
	}

	promo, err := s.repo.GetByID(ctx, promoID)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, NewNotFoundError("Promotion not found")
	}

	promo.Status = decision
	promo.ApprovedByID = &adminID
	if decision == models.PromoRejected {
		reason := defaultRejectReason
		if rejectReason != nil && strings.TrimSpace(*rejectReason) != "" {
			reason = strings.TrimSpace(*rejectReason)
		}
		promo.RejectReason = &reason
	} else {
		promo.RejectReason = nil
	}

	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"promotion_id": promo.ID,
		"status":       decision,
		"admin_id":     adminID,
	}).Info("Promotion decided")

	if s.events != nil {
		s.events.PromotionDecided(promo)
	}
	return promo, nil
}
