package service

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/vehicle-discovery/internal/auth/middleware"
	"github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	"github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	apperrors "github.com/lk2023060901/vehicle-discovery/internal/pkg/errors"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/response"
	"go.uber.org/zap"
)

// ListingService serves listing discovery
type ListingService struct {
	uc     *biz.SearchUseCase
	logger *logger.Logger
}

func NewListingService(uc *biz.SearchUseCase, logger *logger.Logger) *ListingService {
	return &ListingService{
		uc:     uc,
		logger: logger,
	}
}

// RegisterRoutes mounts /listings; auth is applied per route
func (s *ListingService) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	listings := r.Group("/listings")
	{
		listings.GET("/search", auth, s.Search)
	}
}

// Search runs a listing search from query parameters
// @Summary Search listings
// @Tags listings
// @Produce json
// @Success 200 {object} types.SearchResult
// @Router /api/v1/listings/search [get]
func (s *ListingService) Search(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	raw := types.FromValues(c.Request.URL.Query())

	result, err := s.uc.Search(c.Request.Context(), raw, principal)
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("listing search failed", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrSearchStoreUnavailable)
		return
	}

	response.Success(c, result)
}
