package serviceutils

import (
	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_records/internal/logger"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// SuccessResponse is a message plus the result of a store operation.
type SuccessResponse struct {
	Message string      `json:"message"`
	Result  interface{} `json:"result,omitempty"`
}

// ResponseError logs err against the request and writes {"error": msg}.
// msg is what the client sees; err never leaves the process.
func ResponseError(c echo.Context, status int, msg string, err error) error {
	if err != nil {
		logger.ErrorLog(c.Request().Context(), msg, err)
	}
	return c.JSON(status, ErrorResponse{Error: msg})
}

func ResponseMessage(c echo.Context, status int, msg string) error {
	return c.JSON(status, MessageResponse{Message: msg})
}

func ResponseSuccess(c echo.Context, status int, msg string, result interface{}) error {
	return c.JSON(status, SuccessResponse{Message: msg, Result: result})
}
