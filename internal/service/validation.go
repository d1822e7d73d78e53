package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// fieldErrors flattens validator output into a field -> constraint map used
// as the details payload of validation failures.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		constraint := fe.Tag()
		if fe.Param() != "" {
			constraint += "=" + fe.Param()
		}
		details[fe.Field()] = constraint
	}
	return details
}
