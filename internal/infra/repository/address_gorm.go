package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type addressGormRepository struct {
	db *gorm.DB
}

// DI
func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

// 住所を作成（defaultなら同じ種類の他の住所を外す）
func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID, address.AddressType); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return model.Address{}, err
	}
	return address, nil
}

// ユーザーの住所一覧を返す
func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var list []model.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 本人の住所を1件取得
func (r *addressGormRepository) FindByIDAndUserID(ctx context.Context, addressID int64, userID int64) (model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&a).Error; err != nil {
		return model.Address{}, mapNotFound(err)
	}
	return a, nil
}

// 住所を更新
func (r *addressGormRepository) Update(ctx context.Context, address model.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, address.UserID, address.AddressType); err != nil {
				return err
			}
		}

		result := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", address.ID, address.UserID).
			Select(
				"address_type",
				"full_name",
				"phone",
				"line1",
				"line2",
				"city",
				"state",
				"postal_code",
				"country",
				"is_default",
			).
			Updates(address)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// 住所を削除（注文側の参照はFKでNULLになる）
func (r *addressGormRepository) Delete(ctx context.Context, addressID int64, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&model.Address{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// デフォルト住所を切り替える
func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//指定住所がこのユーザーのものか確認
		var a model.Address
		if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&a).Error; err != nil {
			return mapNotFound(err)
		}

		//同じ種類のdefaultを全て false
		if err := clearDefault(tx, userID, a.AddressType); err != nil {
			return err
		}

		//指定住所だけ true
		result := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Update("is_default", true)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func clearDefault(tx *gorm.DB, userID int64, t model.AddressType) error {
	return tx.Model(&model.Address{}).
		Where("user_id = ? AND address_type = ? AND is_default = TRUE", userID, t).
		Update("is_default", false).Error
}
