package repositories

import (
	"errors"
	"fmt"

	"mini-shop/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// classify turns driver errors into domain errors. Unknown errors are wrapped
// and surface as internal at the boundary.
func classify(err error, what string) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		notFound := models.NotFound(what)
		notFound.Err = err
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return models.Conflict("A record with this value already exists", err)
		case pgForeignKeyViolation:
			return &models.AppError{Kind: models.KindNotFound, Message: "Referenced record not found", Err: err}
		case pgCheckViolation:
			if pgErr.ConstraintName == "products_stock_check" {
				return &models.AppError{Kind: models.KindOutOfStock, Message: "Stock cannot go below zero", Err: err}
			}
			return &models.AppError{Kind: models.KindValidation, Message: "Value violates a check constraint", Err: err}
		}
	}

	return fmt.Errorf("%s: %w", what, err)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
