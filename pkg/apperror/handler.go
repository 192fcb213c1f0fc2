package apperror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler returns an Echo error handler rendering every error as
// {"error": {"code": ..., "message": ..., "details": ...}}.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errorObj := ErrInternal.body()

		var he *echo.HTTPError
		if appErr, ok := As(err); ok {
			code = appErr.HTTPStatus
			errorObj = appErr.body()
		} else if errors.As(err, &he) {
			code = he.Code

			if msgMap, ok := he.Message.(map[string]any); ok {
				if errInner, ok := msgMap["error"].(map[string]any); ok {
					for k, v := range errInner {
						errorObj[k] = v
					}
				}
			} else if msg, ok := he.Message.(string); ok {
				errorObj["message"] = msg
				errorObj["code"] = codeForStatus(code)
			}
		}

		if code >= 500 {
			log.Error("request error",
				slog.Int("status", code),
				slog.String("error", err.Error()),
			)
		}

		response := map[string]any{
			"error": errorObj,
		}

		if c.Request().Method == http.MethodHead {
			c.NoContent(code)
		} else {
			c.JSON(code, response)
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest.Code
	case http.StatusNotFound:
		return ErrNotFound.Code
	case http.StatusConflict:
		return ErrConflict.Code
	case http.StatusUnprocessableEntity:
		return ErrValidation.Code
	case http.StatusServiceUnavailable:
		return ErrIO.Code
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return ErrInternal.Code
	}
}
