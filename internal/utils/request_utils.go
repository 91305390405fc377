// package utils provides utility functions to support various operations within the application.
package utils

import (
	"github.com/gin-gonic/gin"

	"mysocial-server/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to the HTTP response
// with the provided status code.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "info", "Returning response")
	ctx.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the specified
// status code and error details.
func WriteAndLogError(ctx *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFields(ctx, "error", "Error occurred: "+err.Error())
	LogMessageWithFields(ctx, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	errorDto := &schemas.ErrorDTO{
		Error: *customErr,
	}
	ctx.JSON(statusCode, errorDto)
}
