// Package validation validates configuration structs with struct tags using
// go-playground/validator.
//
//	type CacheConfig struct {
//	    Backend string `mapstructure:"backend" validate:"oneof=none memory file redis"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are reported as *errors.AppError with code INVALID_CONFIG and a
// "fields" detail listing every offending field by its mapstructure key.
package validation
