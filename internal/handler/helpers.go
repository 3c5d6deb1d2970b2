package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/bryan1993-HA/domovra-addons/internal/apierror"
	"github.com/bryan1993-HA/domovra-addons/internal/middleware"
	"github.com/bryan1993-HA/domovra-addons/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Let numeric tags (gt, min) run on decimals instead of panicking on the
	// struct type.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch v := field.Interface().(type) {
		case decimal.Decimal:
			f, _ := v.Float64()
			return f
		case decimal.NullDecimal:
			if !v.Valid {
				return nil
			}
			f, _ := v.Decimal.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags. On failure
// it writes the response and returns false; the caller just returns.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// writeError maps service sentinels to HTTP statuses. Anything unexpected is
// logged and answered with a generic 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrNoStock):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrFreezerMismatch),
		errors.Is(err, service.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
