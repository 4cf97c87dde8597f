package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type AddressDTO struct {
	ID          int64   `json:"id"`
	AddressType string  `json:"address_type"`
	FullName    string  `json:"full_name"`
	Phone       string  `json:"phone"`
	Line1       string  `json:"line1"`
	Line2       string  `json:"line2"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	PostalCode  string  `json:"postal_code"`
	Country     string  `json:"country"`
	IsDefault   bool    `json:"is_default"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at,omitempty"`
}

// 作成・更新で共通の入力
type AddressInput struct {
	AddressType string
	FullName    string
	Phone       string
	Line1       string
	Line2       string
	City        string
	State       string
	PostalCode  string
	Country     string
	IsDefault   bool
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]AddressDTO, error) {
	if userID <= 0 {
		return nil, unauthorized()
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Get(ctx context.Context, userID int64, addressID int64) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, unauthorized()
	}
	if addressID <= 0 {
		return AddressDTO{}, validation("invalid id")
	}

	a, err := u.addresses.FindByIDAndUserID(ctx, addressID, userID)
	if err != nil {
		return AddressDTO{}, addressLookupError(err)
	}
	return toAddressDTO(&a), nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, unauthorized()
	}

	a, err := buildAddress(in)
	if err != nil {
		return AddressDTO{}, err
	}
	a.UserID = userID
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return AddressDTO{}, dbError(err)
	}
	return toAddressDTO(&created), nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, in AddressInput) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, unauthorized()
	}
	if addressID <= 0 {
		return AddressDTO{}, validation("invalid id")
	}

	a, err := buildAddress(in)
	if err != nil {
		return AddressDTO{}, err
	}

	//本人の住所か
	current, err := u.addresses.FindByIDAndUserID(ctx, addressID, userID)
	if err != nil {
		return AddressDTO{}, addressLookupError(err)
	}

	a.ID = addressID
	a.UserID = userID
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = time.Now()

	if err := u.addresses.Update(ctx, a); err != nil {
		return AddressDTO{}, addressLookupError(err)
	}
	return toAddressDTO(&a), nil
}

// 住所を消しても注文側はNULL参照で残る
func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return unauthorized()
	}
	if addressID <= 0 {
		return validation("invalid id")
	}

	if err := u.addresses.Delete(ctx, addressID, userID); err != nil {
		return addressLookupError(err)
	}
	return nil
}

// 同じ種類(shipping/billing)の中でdefaultは1つ
func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) (AddressDTO, error) {
	if userID <= 0 {
		return AddressDTO{}, unauthorized()
	}
	if addressID <= 0 {
		return AddressDTO{}, validation("invalid id")
	}

	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		return AddressDTO{}, addressLookupError(err)
	}

	a, err := u.addresses.FindByIDAndUserID(ctx, addressID, userID)
	if err != nil {
		return AddressDTO{}, addressLookupError(err)
	}
	return toAddressDTO(&a), nil
}

//入力チェック
func buildAddress(in AddressInput) (model.Address, error) {
	t := model.AddressType(strings.TrimSpace(in.AddressType))
	if t == "" {
		t = model.AddressTypeShipping
	}
	if !t.Valid() {
		return model.Address{}, validation("address_type must be shipping or billing")
	}

	a := model.Address{
		AddressType: t,
		FullName:    strings.TrimSpace(in.FullName),
		Phone:       strings.TrimSpace(in.Phone),
		Line1:       strings.TrimSpace(in.Line1),
		Line2:       strings.TrimSpace(in.Line2),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		PostalCode:  strings.TrimSpace(in.PostalCode),
		Country:     strings.TrimSpace(in.Country),
		IsDefault:   in.IsDefault,
	}
	if a.FullName == "" || a.Line1 == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return model.Address{}, validation("full_name, line1, city, postal_code and country are required")
	}
	return a, nil
}

func addressLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("address not found")
	}
	return dbError(err)
}

func toAddressDTO(a *model.Address) AddressDTO {
	dto := AddressDTO{
		ID:          a.ID,
		AddressType: string(a.AddressType),
		FullName:    a.FullName,
		Phone:       a.Phone,
		Line1:       a.Line1,
		Line2:       a.Line2,
		City:        a.City,
		State:       a.State,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		IsDefault:   a.IsDefault,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &t
	}
	return dto
}
