package common

import (
	"errors"

	"github.com/lib/pq"

	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

// Коды ошибок PostgreSQL, которые репозитории переводят в доменные.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// IsUniqueViolation сообщает о нарушении уникального индекса. constraint пустой - любого.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsCheckViolation - нарушение CHECK, например отрицательный баланс.
func IsCheckViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pgCheckViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// MapUnique заменяет нарушение уникальности на доменную ошибку.
func MapUnique(err error, constraint string, domainErr *apperror.AppError) error {
	if IsUniqueViolation(err, constraint) {
		return domainErr
	}
	return err
}
