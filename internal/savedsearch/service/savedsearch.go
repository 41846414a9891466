package service

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/vehicle-discovery/internal/auth/middleware"
	listingbiz "github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	apperrors "github.com/lk2023060901/vehicle-discovery/internal/pkg/errors"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/response"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/biz"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/types"
	"go.uber.org/zap"
)

// SavedSearchService exposes saved search management over HTTP
type SavedSearchService struct {
	registry *biz.Registry
	detector *biz.Detector
	logger   *logger.Logger
}

func NewSavedSearchService(registry *biz.Registry, detector *biz.Detector, logger *logger.Logger) *SavedSearchService {
	return &SavedSearchService{
		registry: registry,
		detector: detector,
		logger:   logger,
	}
}

// RegisterRoutes mounts /saved-searches behind auth; limiter guards mutations
func (s *SavedSearchService) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, limiter gin.HandlerFunc) {
	searches := r.Group("/saved-searches", auth)
	{
		searches.GET("", s.List)
		searches.POST("", limiter, s.Create)
		searches.PATCH("/:id", limiter, s.Rename)
		searches.DELETE("/:id", limiter, s.Delete)
		searches.POST("/:id/check", limiter, s.Check)
	}
}

// Create saves the normalized criteria under a name
// @Summary Create saved search
// @Tags saved-searches
// @Accept json
// @Produce json
// @Param request body types.CreateRequest true "name and raw criteria"
// @Success 201 {object} types.View
// @Router /api/v1/saved-searches [post]
func (s *SavedSearchService) Create(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var req types.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	saved, err := s.registry.Create(c.Request.Context(), principal, req.Name, listingbiz.Normalize(req.Criteria))
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Created(c, saved.ToView())
}

// List returns the caller's saved searches, oldest first
func (s *SavedSearchService) List(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	searches, err := s.registry.List(c.Request.Context(), principal)
	if err != nil {
		s.handleError(c, err)
		return
	}

	views := make([]*types.View, len(searches))
	for i, saved := range searches {
		views[i] = saved.ToView()
	}
	response.Success(c, views)
}

// Rename answers an empty object when the search is missing or not owned
func (s *SavedSearchService) Rename(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	var req types.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	saved, err := s.registry.Rename(c.Request.Context(), c.Param("id"), principal, req.Name)
	if err != nil {
		s.handleError(c, err)
		return
	}
	if saved == nil {
		response.Success(c, nil)
		return
	}

	response.Success(c, saved.ToView())
}

func (s *SavedSearchService) Delete(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	if err := s.registry.Delete(c.Request.Context(), c.Param("id"), principal); err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, nil)
}

// Check recounts new matches and advances the checkpoint
// @Summary Check saved search for new matches
// @Tags saved-searches
// @Produce json
// @Param id path string true "saved search id"
// @Success 200 {object} types.CheckResult
// @Router /api/v1/saved-searches/{id}/check [post]
func (s *SavedSearchService) Check(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)

	result, err := s.detector.CheckByID(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, result)
}

func (s *SavedSearchService) handleError(c *gin.Context, err error) {
	code := apperrors.ErrInternalServer
	switch {
	case errors.Is(err, biz.ErrQuotaExceeded):
		code = apperrors.ErrSavedSearchQuota
	case errors.Is(err, biz.ErrSavedSearchNotFound):
		code = apperrors.ErrSavedSearchNotFound
	case errors.Is(err, biz.ErrNameRequired):
		code = apperrors.ErrSavedSearchInvalidInput
	case errors.Is(err, biz.ErrPrincipalRequired):
		code = apperrors.ErrUnauthorized
	case errors.Is(err, listingbiz.ErrStoreUnavailable):
		code = apperrors.ErrSearchStoreUnavailable
	}

	if apperrors.IsServerError(code) {
		s.logger.WithContext(c.Request.Context()).Error("saved search request failed",
			zap.Int("code", code), zap.Error(err))
	}
	response.HandleError(c, apperrors.Wrap(err, code))
}
