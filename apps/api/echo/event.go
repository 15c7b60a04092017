package echoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/schedule"
	"github.com/trezcool/chuo/services/calendar"
	"github.com/trezcool/chuo/services/export"
)

const (
	mimeTextCalendar = "text/calendar; charset=utf-8"
	maxImportSize    = 10 << 20
)

var errEvtNotFoundInCtx = errors.New("event object not found in echo.Context")

type eventApi struct {
	svc        *schedule.Service
	codec      *calendar.Codec
	validate   *validator.Validate
	translator ut.Translator
}

func registerEventAPI(
	g *echo.Group,
	svc *schedule.Service,
	codec *calendar.Codec,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := eventApi{
		svc:        svc,
		codec:      codec,
		validate:   validate,
		translator: translator,
	}

	eg := g.Group("/events")
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.DELETE("", api.destroyMultiple)
	eg.GET("/conflicts", api.conflicts)
	eg.POST("/conflicts/check", api.checkConflicts)
	eg.GET("/stats", api.stats)
	eg.GET("/export.csv", api.exportCSV)
	eg.GET("/export.ics", api.exportICS)
	eg.POST("/import.ics", api.importICS)

	// detail endpoints
	dg := eg.Group("/:id", eventObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *eventApi) create(ctx echo.Context) error {
	var data schedule.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *eventApi) bindQuery(ctx echo.Context) (*schedule.QueryFilter, []core.DBOrdering, error) {
	filter := new(schedule.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, nil, err
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	return filter, ordering.Orderings, nil
}

func (api *eventApi) query(ctx echo.Context) error {
	filter, ordering, err := api.bindQuery(ctx)
	if err != nil {
		return ctx.JSON(http.StatusOK, []schedule.Event{})
	}

	events, err := api.svc.Query(ctx.Request().Context(), filter, ordering)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []schedule.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(schedule.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) update(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(schedule.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}

	var data schedule.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	evt, err := api.svc.Update(ctx.Request().Context(), evt.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	evt, ok := ctx.Get("object").(schedule.Event)
	if !ok {
		return errors.Wrap(errEvtNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), evt.ID); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) conflicts(ctx echo.Context) error {
	var filter schedule.ConflictFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ConflictFilter")
	}
	if err := filter.Validate(api.validate); err != nil {
		return err
	}

	conflicts, err := api.svc.Conflicts(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "detecting conflicts")
	}
	return ctx.JSON(http.StatusOK, conflicts)
}

// checkConflicts runs the detector on the posted events without touching storage.
func (api *eventApi) checkConflicts(ctx echo.Context) error {
	var events []schedule.Event
	body := io.LimitReader(ctx.Request().Body, maxImportSize)
	if err := json.NewDecoder(body).Decode(&events); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "expected a JSON list of events").SetInternal(err)
	}
	return ctx.JSON(http.StatusOK, schedule.DetectConflicts(events))
}

func (api *eventApi) stats(ctx echo.Context) error {
	filter, _, err := api.bindQuery(ctx)
	if err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "computing event stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *eventApi) exportCSV(ctx echo.Context) error {
	filter, ordering, err := api.bindQuery(ctx)
	if err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	events, err := api.svc.Query(ctx.Request().Context(), filter, ordering)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}

	var buf bytes.Buffer
	if err = export.Events(&buf, events); err != nil {
		return errors.Wrap(err, "exporting events")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="events.csv"`)
	return ctx.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func (api *eventApi) exportICS(ctx echo.Context) error {
	filter, ordering, err := api.bindQuery(ctx)
	if err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	events, err := api.svc.Query(ctx.Request().Context(), filter, ordering)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}

	var buf bytes.Buffer
	if err = api.codec.Encode(&buf, events); err != nil {
		if err == calendar.ErrNoEvents {
			return errNoEvents
		}
		return errors.Wrap(err, "exporting events")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="events.ics"`)
	return ctx.Blob(http.StatusOK, mimeTextCalendar, buf.Bytes())
}

// importICS creates the events of an iCalendar body. Nothing is created unless every event is valid.
func (api *eventApi) importICS(ctx echo.Context) error {
	body := io.LimitReader(ctx.Request().Body, maxImportSize)
	payloads, err := api.codec.Decode(body)
	if err != nil {
		return core.NewValidationError(errors.Wrap(err, "invalid calendar"))
	}

	var fldErrs []core.FieldError
	for i := range payloads {
		err := payloads[i].Validate(api.validate)
		if err == nil {
			continue
		}
		flds, ok := core.FieldErrors(err, api.translator, fmt.Sprintf("events[%d].%%s", i))
		if !ok {
			return errors.Wrap(err, "validating imported event")
		}
		fldErrs = append(fldErrs, flds...)
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}

	created := make([]schedule.Event, 0, len(payloads))
	for _, ne := range payloads {
		evt, err := api.svc.Create(ctx.Request().Context(), ne)
		if err != nil {
			return errors.Wrap(err, "creating imported event")
		}
		created = append(created, evt)
	}
	return ctx.JSON(http.StatusCreated, created)
}

func eventObjectMiddleware(svc *schedule.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			evt, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err == nil {
				ctx.Set("object", evt)
				return next(ctx)
			}
			if errors.Cause(err) != schedule.ErrNotFound {
				return errors.Wrap(err, "finding event by ID")
			}
			return errHttpNotFound
		}
	}
}
