package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/core/schedule"
)

var (
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")
	errNoEvents     = echo.NewHTTPError(http.StatusNotFound, "no events to export")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message := errorResponse(err, translator)

		if code == http.StatusInternalServerError {
			msg := http.StatusText(code)
			logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Request().URL.Path,
			})
			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// errorResponse maps err to a status code and a JSON-able message.
func errorResponse(err error, translator ut.Translator) (int, interface{}) {
	if flds, ok := core.FieldErrors(err, translator); ok {
		return http.StatusBadRequest, core.ValidationError{Fields: flds}.Map()
	}

	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if herr, ok := cause.Internal.(*echo.HTTPError); ok {
			cause = herr
		}
		return cause.Code, cause.Message
	case *core.ValidationError:
		if len(cause.Fields) > 0 {
			return http.StatusBadRequest, cause.Map()
		}
		return http.StatusBadRequest, cause.Error()
	}

	switch errors.Cause(err) {
	case schedule.ErrNotFound, scholarship.ErrNotFound:
		return errHttpNotFound.Code, errHttpNotFound.Message
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
