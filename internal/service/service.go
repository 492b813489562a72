// Package service implements the use cases of the school API on top of the
// domain store: payload validation, role checks, caching of derived views
// and report exports.
package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

// Dependencies groups the collaborators shared by the domain services.
type Dependencies struct {
	Validator   *validator.Validate
	Logger      *zap.Logger
	Metrics     *MetricsService
	Invalidator CacheInvalidator
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Validator == nil {
		d.Validator = validator.New()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Invalidator == nil {
		d.Invalidator = noopInvalidator{}
	}
	return d
}

// validate runs struct validation and wraps failures as validation errors.
func (d Dependencies) validate(req interface{}, message string) error {
	if err := d.Validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}

// mutated logs, counts and invalidates after a successful write.
func (d Dependencies) mutated(entity, action, id string, patterns ...string) {
	d.Logger.Info(entity+" "+action, zap.String("id", id))
	d.Metrics.RecordMutation(entity, action)
	d.Invalidator.Invalidate(patterns...)
}
