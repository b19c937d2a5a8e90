package api

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Error   string            `json:"error" example:"validation failed"`
	Details []ValidationError `json:"details"`
}

// BindJSON decodes the body into obj and runs its binding tags. On failure it
// writes a 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	return respondBindError(c, c.ShouldBindJSON(obj), "invalid request body")
}

const defaultPageLimit = 50

type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// BindPage reads limit and offset from the query string. A missing limit
// defaults to 50; malformed or negative values get a 400.
func BindPage(c *gin.Context) (PageQuery, bool) {
	var p PageQuery
	if !respondBindError(c, c.ShouldBindQuery(&p), "limit and offset must be integers") {
		return PageQuery{}, false
	}
	if p.Limit == 0 {
		p.Limit = defaultPageLimit
	}
	return p, true
}

func respondBindError(c *gin.Context, err error, fallback string) bool {
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:   "validation failed",
			Details: FormatValidationErrors(verrs),
		})
		return false
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: fallback})
	return false
}

func FormatValidationErrors(verrs validator.ValidationErrors) []ValidationError {
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: errorMessage(fe),
		})
	}
	return out
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fe.Field() + " must be at most " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at most " + fe.Param()
	case "len":
		return fe.Field() + " must be exactly " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
