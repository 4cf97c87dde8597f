package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

// refreshtokenの有効期限
const RefreshTokenTTL = 30 * 24 * time.Hour

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
	ValidateChangePassword(ctx context.Context, oldPassword string, newPassword string) error
}

type UserDTO struct {
	ID                int64  `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Phone             string `json:"phone"`
	PreferredLanguage string `json:"preferred_language"`
	Role              string `json:"role"`
	TokenVersion      int    `json:"token_version"`
	IsActive          bool   `json:"is_active"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthRegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthRegisterResponse struct {
	User UserDTO `json:"user"`
}

type AuthLoginRequest struct {
	Email    string
	Password string
}

type AuthLoginResponse struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type LoginResult struct {
	Body              AuthLoginResponse
	RefreshTokenPlain string
}

type RefreshResult struct {
	Body              JwtAccessTokenDTO
	RefreshTokenPlain string
}

type AuthUsecase struct {
	jwtSecret []byte
	users     repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	audit     repository.AuditLogRepository
	validator AuthValidator
	logger    *slog.Logger
}

func NewAuthUsecase(
	jwtSecret string,
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	audit repository.AuditLogRepository,
	validator AuthValidator,
	logger *slog.Logger,
) *AuthUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthUsecase{
		jwtSecret: []byte(jwtSecret),
		users:     users,
		rtRepo:    rtRepo,
		audit:     audit,
		validator: validator,
		logger:    logger,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthRegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := u.validator.ValidateRegister(ctx, email, req.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:             email,
		PasswordHash:      string(pwHash),
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		PreferredLanguage: DefaultLanguage,
		Role:              model.RoleUser,
		TokenVersion:      0,
		IsActive:          true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		//validatorをすり抜けた同時登録
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewHTTPError(http.StatusConflict, "email already used")
		}
		return nil, dbError(err)
	}

	return &AuthRegisterResponse{User: toUserDTO(user)}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest, userAgent string) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := u.validator.ValidateLogin(ctx, email, req.Password); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, dbError(err)
	}
	if user == nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	//last_login更新（失敗してもログインは通す）
	now := time.Now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.logger.WarnContext(ctx, "failed to update last_login_at", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
	}

	accessToken, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	refreshPlain, err := u.storeRefreshToken(ctx, user.ID, userAgent)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Body: AuthLoginResponse{
			User: toUserDTO(user),
			Token: JwtAccessTokenDTO{
				AccessToken:  accessToken,
				ExpiresIn:    expiresIn,
				TokenVersion: user.TokenVersion,
			},
		},
		RefreshTokenPlain: refreshPlain,
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	user, err := u.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// refreshはローテーション。使用済みが来たら再利用とみなして全削除
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string, userAgent string) (*RefreshResult, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshTokenPlain); err != nil {
		return nil, err
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) || (err == nil && rt == nil) {
		return nil, unauthorized()
	}
	if err != nil {
		return nil, dbError(err)
	}

	//期限切れ
	if rt.ExpiresAt.Before(time.Now()) {
		_ = u.rtRepo.DeleteByID(ctx, rt.ID)
		return nil, unauthorized()
	}
	if rt.RevokedAt != nil {
		return nil, unauthorized()
	}

	//used済みが来たら replay → 全削除
	if rt.UsedAt != nil {
		u.revokeAll(ctx, rt.UserID, "refresh token reuse")
		return nil, NewHTTPError(http.StatusUnauthorized, "refresh token reuse detected")
	}

	user, err := u.activeUser(ctx, rt.UserID)
	if err != nil {
		return nil, err
	}

	newPlain, next, err := newRefreshToken(user.ID, userAgent)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//旧tokenのused化と新tokenの保存は同じTx（同時に2回来たら片方は失敗する）
	if err := u.rtRepo.Rotate(ctx, rt.ID, next); err != nil {
		if !errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, dbError(err)
		}
		u.revokeAll(ctx, rt.UserID, "concurrent refresh")
		return nil, NewHTTPError(http.StatusUnauthorized, "refresh token reuse detected")
	}

	accessToken, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &RefreshResult{
		Body: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
		RefreshTokenPlain: newPlain,
	}, nil
}

func (u *AuthUsecase) Logout(ctx context.Context, refreshTokenPlain string) (*SuccessResponse, error) {
	if strings.TrimSpace(refreshTokenPlain) == "" {
		return nil, unauthorized()
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) || (err == nil && rt == nil) {
		return nil, unauthorized()
	}
	if err != nil {
		return nil, dbError(err)
	}

	if err := u.rtRepo.DeleteByID(ctx, rt.ID); err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return nil, dbError(err)
	}

	return &SuccessResponse{Message: "logout success"}, nil
}

// 旧パスワード確認→更新。token_versionが上がるので既存のaccess tokenは使えなくなる
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID int64, oldPassword string, newPassword string) (*SuccessResponse, error) {
	if err := u.validator.ValidateChangePassword(ctx, oldPassword, newPassword); err != nil {
		return nil, err
	}

	user, err := u.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "old password is incorrect")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.users.UpdatePassword(ctx, userID, string(pwHash)); err != nil {
		return nil, dbError(err)
	}

	u.revokeAll(ctx, userID, "password changed")

	if err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  userID,
		Action:       model.AuditActionChangePassword,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   `{"token_version":` + itoa(user.TokenVersion) + `}`,
		AfterJSON:    `{"token_version":` + itoa(user.TokenVersion+1) + `}`,
		CreatedAt:    time.Now(),
	}); err != nil {
		u.logger.WarnContext(ctx, "failed to write audit log", slog.Int64("user_id", userID), slog.String("error", err.Error()))
	}

	return &SuccessResponse{Message: "password changed"}, nil
}

func (u *AuthUsecase) activeUser(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, unauthorized()
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, dbError(err)
	}
	if user == nil {
		return nil, unauthorized()
	}
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "user is inactive")
	}
	return user, nil
}

func (u *AuthUsecase) revokeAll(ctx context.Context, userID int64, reason string) {
	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		u.logger.ErrorContext(ctx, "failed to revoke refresh tokens",
			slog.Int64("user_id", userID),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		return
	}
	u.logger.InfoContext(ctx, "refresh tokens revoked", slog.Int64("user_id", userID), slog.String("reason", reason))
}

// refresh token生成（DBにはhashだけ保存）
func (u *AuthUsecase) storeRefreshToken(ctx context.Context, userID int64, userAgent string) (string, error) {
	plain, rt, err := newRefreshToken(userID, userAgent)
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return "", dbError(err)
	}
	return plain, nil
}

func newRefreshToken(userID int64, userAgent string) (string, *model.RefreshToken, error) {
	plain, hash, err := newRandomTokenAndHash()
	if err != nil {
		return "", nil, err
	}
	return plain, &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(RefreshTokenTTL),
	}, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, int, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString(u.jwtSecret)
	if err != nil {
		return "", 0, err
	}

	return signed, int(accessTokenTTL.Seconds()), nil
}

func newRandomTokenAndHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, hashToken(plain), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Phone:             u.Phone,
		PreferredLanguage: u.PreferredLanguage,
		Role:              string(u.Role),
		TokenVersion:      u.TokenVersion,
		IsActive:          u.IsActive,
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
