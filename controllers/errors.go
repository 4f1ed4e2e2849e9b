package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"mini-shop/middleware"
	"mini-shop/models"
	"mini-shop/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var kindStatus = map[models.ErrorKind]int{
	models.KindNotFound:          http.StatusNotFound,
	models.KindAccessDenied:      http.StatusForbidden,
	models.KindInsufficientStock: http.StatusBadRequest,
	models.KindOutOfStock:        http.StatusBadRequest,
	models.KindEmptyCart:         http.StatusBadRequest,
	models.KindValidation:        http.StatusUnprocessableEntity,
	models.KindConflict:          http.StatusConflict,
	models.KindUnauthorized:      http.StatusUnauthorized,
}

// StatusFor maps an error kind to its HTTP status; unknown kinds are 500.
func StatusFor(kind models.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *models.AppError
	kind := models.KindOf(err)
	status := StatusFor(kind)

	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, models.ErrorResponse{Success: false, Message: "Internal server error"})
		return
	}

	resp := models.ErrorResponse{Success: false, Message: err.Error()}
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Details = appErr.Fields
	}
	c.JSON(status, resp)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
		Success: false,
		Message: "Validation failed",
		Details: utils.FieldViolations(err),
	})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Success: false,
			Message: "Validation failed",
			Details: []models.FieldViolation{{Field: name, Message: name + " must be a positive integer"}},
		})
		return 0, false
	}
	return id, true
}

func principal(c *gin.Context) *models.Principal {
	p, _ := middleware.CurrentPrincipal(c)
	return p
}
