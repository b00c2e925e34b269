package handler // handler defines http handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/middleware"
	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/repository"
	"github.com/iliyamo/stagebook/internal/service"
)

// requestTimeout bounds the store calls of one request.
const requestTimeout = 10 * time.Second

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a validator reporting JSON field names.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return &service.ValidationError{Errors: msgs}
		}
		return err
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be less than %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// bind decodes the body into req and validates it.  A malformed body is
// a 400, a body that breaks validation rules a 422.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return c.Validate(req)
}

// Principals resolves the authenticated caller.
type Principals struct {
	Users repository.UserRepository
}

// principal loads the caller's principal by the email claim set by
// middleware.JWTAuth.
func (p Principals) principal(c echo.Context) (model.Principal, error) {
	email, _ := c.Get(middleware.CtxEmail).(string)
	if email == "" {
		return model.Principal{}, service.ErrUnauthorized
	}
	pr, err := p.Users.ResolvePrincipal(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Principal{}, service.ErrUnauthorized
		}
		return model.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}
	return pr, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// result writes a workflow outcome: 200 on success, 409 when a state
// gate refused the call.
func result(c echo.Context, status int, res service.Result, err error) error {
	if err != nil {
		return err
	}
	if !res.Success {
		return c.JSON(http.StatusConflict, res)
	}
	return c.JSON(status, res)
}

// ErrorHandler renders errors as {"message": ...}.  Service errors map to
// their status codes; anything unexpected is logged and reported as an
// opaque 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request().Context()).Error("request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.WithContext(c.Request().Context()).Warn("write error response", "error", err)
	}
}

func errorResponse(err error) (int, echo.Map) {
	var verr *service.ValidationError
	var herr *echo.HTTPError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, echo.Map{"message": "validation failed", "errors": verr.Errors}
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, echo.Map{"message": "unauthorized"}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, echo.Map{"message": "forbidden"}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, echo.Map{"message": "not found"}
	case errors.As(err, &herr):
		msg, ok := herr.Message.(string)
		if !ok {
			msg = http.StatusText(herr.Code)
		}
		if herr.Code >= http.StatusInternalServerError {
			msg = "internal error"
		}
		return herr.Code, echo.Map{"message": msg}
	}
	return http.StatusInternalServerError, echo.Map{"message": "internal error"}
}

// withTimeout derives the store context of a request, as every handler
// bounds its database work.
func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}
