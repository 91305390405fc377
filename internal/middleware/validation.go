package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"mysocial-server/internal/schemas"
	"mysocial-server/internal/utils"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh instance of the
// given request struct, sanitizes its string fields and validates it. The
// validated payload is stored in the request context for the handler.
func ValidateAndSanitizeStruct(obj interface{}) gin.HandlerFunc {
	structType := reflect.TypeOf(obj).Elem()

	return func(c *gin.Context) {
		payload := reflect.New(structType).Interface()

		if err := c.ShouldBindJSON(payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		validator := utils.GetValidator()
		validator.SanitizeData(payload)

		if err := validator.Validate.Struct(payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), payload)
		c.Next()
	}
}
