package repository

import (
	"github.com/orghealth/ascent/internal/model"
	"gorm.io/gorm"
)

type PromoRepository interface {
	FindByCode(code string) (*model.PromoCode, error)
	CountRedemptions(promoID uint) (int64, error)
	CountRedemptionsByUser(promoID, userID uint) (int64, error)
	UserHasAnyRedemption(userID uint) (bool, error)
	FindRedemption(promoID, userID, assessmentID uint) (*model.Redemption, error)
	CreateRedemption(redemption *model.Redemption) error
}

type promoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) PromoRepository {
	return &promoRepository{db: db}
}

func (r *promoRepository) FindByCode(code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.Where("code = ?", model.NormalizePromoCode(code)).First(&promo).Error
	return &promo, err
}

func (r *promoRepository) CountRedemptions(promoID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Redemption{}).
		Where("promo_code_id = ?", promoID).
		Count(&count).Error
	return count, err
}

func (r *promoRepository) CountRedemptionsByUser(promoID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Redemption{}).
		Where("promo_code_id = ? AND user_id = ?", promoID, userID).
		Count(&count).Error
	return count, err
}

func (r *promoRepository) UserHasAnyRedemption(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Redemption{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (r *promoRepository) FindRedemption(promoID, userID, assessmentID uint) (*model.Redemption, error) {
	var redemption model.Redemption
	err := r.db.Where("promo_code_id = ? AND user_id = ? AND assessment_id = ?", promoID, userID, assessmentID).
		First(&redemption).Error
	return &redemption, err
}

func (r *promoRepository) CreateRedemption(redemption *model.Redemption) error {
	return r.db.Create(redemption).Error
}
