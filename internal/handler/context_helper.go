package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/colegio-api/internal/middleware"
	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/service"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext returns the authenticated caller or an unauthorized error.
func actorFromContext(c *gin.Context) (service.Actor, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Actor{}, appErrors.ErrUnauthorized
	}
	return service.ActorFromClaims(claims), nil
}

func cacheMeta(hit bool, start time.Time) map[string]interface{} {
	return map[string]interface{}{
		"cache_hit":          hit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
}

func bindError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}
