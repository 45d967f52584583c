package service

import (
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"
)

func requireUser(p model.Principal) error {
	if !p.IsAuthenticated() {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func requireAdmin(p model.Principal) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}
