package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/scholarship"
	"github.com/trezcool/chuo/services/export"
)

var errSchNotFoundInCtx = errors.New("scholarship object not found in echo.Context")

type scholarshipApi struct {
	svc      *scholarship.Service
	validate *validator.Validate
}

func registerScholarshipAPI(g *echo.Group, svc *scholarship.Service, validate *validator.Validate) {
	api := scholarshipApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/scholarships")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.DELETE("", api.destroyMultiple)
	sg.GET("/stats", api.stats)
	sg.GET("/export.csv", api.exportCSV)

	// detail endpoints
	dg := sg.Group("/:id", scholarshipObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *scholarshipApi) create(ctx echo.Context) error {
	var data scholarship.NewScholarship
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScholarship")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating scholarship")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *scholarshipApi) bindQuery(ctx echo.Context) (*scholarship.QueryFilter, []core.DBOrdering, error) {
	filter := new(scholarship.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, nil, err
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	return filter, ordering.Orderings, nil
}

func (api *scholarshipApi) query(ctx echo.Context) error {
	filter, ordering, err := api.bindQuery(ctx)
	if err != nil {
		return ctx.JSON(http.StatusOK, []scholarship.Scholarship{})
	}

	records, err := api.svc.Query(ctx.Request().Context(), filter, ordering)
	if err != nil {
		return errors.Wrap(err, "querying scholarships")
	}
	if records == nil {
		records = []scholarship.Scholarship{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *scholarshipApi) retrieve(ctx echo.Context) error {
	s, ok := ctx.Get("object").(scholarship.Scholarship)
	if !ok {
		return errors.Wrap(errSchNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *scholarshipApi) update(ctx echo.Context) error {
	s, ok := ctx.Get("object").(scholarship.Scholarship)
	if !ok {
		return errors.Wrap(errSchNotFoundInCtx, "retrieving object from context")
	}

	var data scholarship.UpdateScholarship
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateScholarship")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), s.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating scholarship")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *scholarshipApi) destroy(ctx echo.Context) error {
	s, ok := ctx.Get("object").(scholarship.Scholarship)
	if !ok {
		return errors.Wrap(errSchNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting scholarship")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scholarshipApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting scholarships")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scholarshipApi) stats(ctx echo.Context) error {
	filter, _, err := api.bindQuery(ctx)
	if err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "computing scholarship stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *scholarshipApi) exportCSV(ctx echo.Context) error {
	filter, ordering, err := api.bindQuery(ctx)
	if err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	records, err := api.svc.Query(ctx.Request().Context(), filter, ordering)
	if err != nil {
		return errors.Wrap(err, "querying scholarships")
	}

	var buf bytes.Buffer
	if err = export.Scholarships(&buf, records); err != nil {
		return errors.Wrap(err, "exporting scholarships")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="scholarships.csv"`)
	return ctx.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func scholarshipObjectMiddleware(svc *scholarship.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err == nil {
				ctx.Set("object", s)
				return next(ctx)
			}
			if errors.Cause(err) != scholarship.ErrNotFound {
				return errors.Wrap(err, "finding scholarship by ID")
			}
			return errHttpNotFound
		}
	}
}
