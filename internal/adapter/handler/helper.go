package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/hybridtechie/roundtable-ai/errors"
)

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// HandleSuccess writes a JSON success response.
func HandleSuccess(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, data)
}

// HandleError maps an application error onto the HTTP response. Unknown
// errors become opaque 500s; the detail stays in the logs.
func HandleError(c echo.Context, logger *zap.Logger, err error) error {
	var appErr apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("request failed", zap.Error(err), zap.String("path", c.Path()))
		} else {
			logger.Warn("request rejected", zap.Error(err), zap.String("path", c.Path()))
		}
		return c.JSON(appErr.HTTPCode, ErrorResponse{
			Code:    appErr.Code.String(),
			Message: appErr.Message,
			Details: appErr.Details,
		})
	}

	logger.Error("unhandled error", zap.Error(err), zap.String("path", c.Path()))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    apperrors.ErrorCode_INTERNAL.String(),
		Message: "internal server error",
	})
}

// BindAndValidate decodes the request body and runs struct validation.
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.ErrInvalidArgument("malformed request body")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.ErrInvalidArgument(err.Error())
	}
	return nil
}
