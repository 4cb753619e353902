package mediator

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// LoggingMiddleware logs each request's type, duration and failure
func LoggingMiddleware() Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		started := time.Now()
		resp, err := next(ctx, request)

		metadata := map[string]interface{}{
			"request":     requestName(request),
			"duration_ms": time.Since(started).Milliseconds(),
		}
		if err != nil {
			metadata["error"] = err.Error()
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Request failed", metadata)
			return resp, err
		}
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Request handled", metadata)
		return resp, nil
	}
}

// ValidationMiddleware checks struct tags on the request before dispatch and
// reports the first violation as a shared.ValidationError
func ValidationMiddleware(validate *validator.Validate) Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		v := reflect.ValueOf(request)
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return next(ctx, request)
		}
		if err := validate.Struct(request); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				fe := fieldErrs[0]
				return nil, shared.NewValidationError(strings.ToLower(fe.Field()), "failed "+fe.Tag())
			}
			return nil, err
		}
		return next(ctx, request)
	}
}

func requestName(request Request) string {
	t := reflect.TypeOf(request)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
