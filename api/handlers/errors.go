package handlers

import (
	"fmt"

	"empowerpwd/services"
)

func invalidBody(err error) error {
	return fmt.Errorf("%w: invalid request body: %v", services.ErrValidation, err)
}

func invalidParam(name string) error {
	return fmt.Errorf("%w: invalid %s", services.ErrValidation, name)
}
