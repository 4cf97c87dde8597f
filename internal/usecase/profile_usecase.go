package usecase

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/repository"
)

const DefaultLanguage = "uz"

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// 対応言語（翻訳はしない。コードの一覧だけ）
var SupportedLanguages = []Language{
	{Code: "en", Name: "English"},
	{Code: "ru", Name: "Русский"},
	{Code: "uz", Name: "O'zbekcha"},
}

func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}

type UpdateProfileInput struct {
	FirstName         *string
	LastName          *string
	Phone             *string
	PreferredLanguage *string
}

type ProfileUsecase struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewProfileUsecase(users repository.UserRepository, logger *slog.Logger) *ProfileUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileUsecase{users: users, logger: logger}
}

func (u *ProfileUsecase) Get(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, unauthorized()
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return UserDTO{}, dbError(err)
	}
	if user == nil {
		return UserDTO{}, notFound("user not found")
	}
	return toUserDTO(user), nil
}

// 言語設定の保存はベストエフォート（失敗はログに出してプロフィール更新は成功させる）
func (u *ProfileUsecase) Update(ctx context.Context, userID int64, in UpdateProfileInput) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, unauthorized()
	}

	var lang string
	if in.PreferredLanguage != nil {
		lang = strings.ToLower(strings.TrimSpace(*in.PreferredLanguage))
		if !IsSupportedLanguage(lang) {
			return UserDTO{}, validation("unsupported language")
		}
	}

	if err := u.users.UpdateProfile(ctx, userID, repository.ProfileUpdate{
		FirstName: trimmed(in.FirstName),
		LastName:  trimmed(in.LastName),
		Phone:     trimmed(in.Phone),
	}); err != nil {
		return UserDTO{}, lookupError(err, "user not found")
	}

	if lang != "" {
		if err := u.users.UpdatePreferredLanguage(ctx, userID, lang); err != nil {
			u.logger.WarnContext(ctx, "failed to save preferred language",
				slog.Int64("user_id", userID),
				slog.String("language", lang),
				slog.String("error", err.Error()),
			)
		}
	}

	return u.Get(ctx, userID)
}

func (u *ProfileUsecase) Languages() []Language {
	out := make([]Language, len(SupportedLanguages))
	copy(out, SupportedLanguages)
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
