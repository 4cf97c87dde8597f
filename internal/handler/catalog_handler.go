package handler

import (
	"net/http"

	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 公開カタログ（ログイン不要）
type CatalogHandler struct {
	uc      *usecase.CatalogUsecase
	profile *usecase.ProfileUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase, profile *usecase.ProfileUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc, profile: profile}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/categories", h.categories)
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.GET("/languages", h.languages)
}

func (h *CatalogHandler) categories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) list(c echo.Context) error {
	// page（default 1）
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	// limit（default 20）
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.ListProducts(c.Request().Context(), repository.ProductListQuery{
		Page:         page,
		Limit:        limit,
		CategorySlug: c.QueryParam("category"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) detail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) languages(c echo.Context) error {
	return c.JSON(http.StatusOK, h.profile.Languages())
}
