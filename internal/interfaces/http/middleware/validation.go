package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/storefront/console/internal/domain/inventory"
	"github.com/storefront/console/internal/domain/order"
	"github.com/storefront/console/internal/interfaces/http/dto"
)

// Custom validation tags
const (
	TagOrderStatus = "order_status"
	TagStockStatus = "stock_status"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator with JSON field names and the console's custom tags.
// It is safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Use JSON tag names for field names in errors
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation(TagOrderStatus, validateOrderStatus)
		_ = v.RegisterValidation(TagStockStatus, validateStockStatus)
	})
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	_, ok := order.ParseStatus(fl.Field().String())
	return ok
}

func validateStockStatus(fl validator.FieldLevel) bool {
	return inventory.StockStatus(fl.Field().String()).IsValid()
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleValidationError answers 400 for a binding error, or 413 when the body ran past BodyLimit.
// Field rule violations carry details; malformed bodies carry the decoder message.
func HandleValidationError(c *gin.Context, err error) {
	if IsBodyTooLarge(err) {
		abortTooLarge(c)
		return
	}
	requestID := GetRequestID(c)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, err.Error(), requestID))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "datetime":
		return "Must be a date in the format " + e.Param()
	case TagOrderStatus:
		return "Must be a known order status"
	case TagStockStatus:
		return "Must be IN_STOCK, LOW_STOCK or OUT_OF_STOCK"
	default:
		return "Invalid value"
	}
}
