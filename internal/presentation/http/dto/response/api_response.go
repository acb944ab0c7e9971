package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Type    string      `json:"type"`
	Details interface{} `json:"details,omitempty"`
}

// Success sends a bare JSON body
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SuccessWithPagination sends a page of results
func SuccessWithPagination[T any](c *gin.Context, result *pagination.PaginatedResult[T]) {
	c.JSON(http.StatusOK, result)
}

// Error converts err to an AppError and writes the failure envelope.
// Server-side failures are logged with their cause.
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)

	if appErr.Code >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("type", string(appErr.Type)),
			zap.Error(errorsCause(appErr)),
		)
	}

	body := ErrorResponse{
		Error:   appErr.Message,
		Type:    string(appErr.Type),
		Details: appErr.Details,
	}
	if len(appErr.Errors) > 0 {
		body.Details = appErr.Errors
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}

func errorsCause(appErr *apperror.AppError) error {
	if cause := appErr.Unwrap(); cause != nil {
		return cause
	}
	return appErr
}

// ErrorWithCode sends a failure envelope with a specific status code
func ErrorWithCode(c *gin.Context, statusCode int, message string) {
	Error(c, apperror.NewAppError(statusCode, message))
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}) {
	Success(c, http.StatusCreated, data)
}

// OK sends a 200 OK response
func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusUnauthorized, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusTooManyRequests, message)
}
