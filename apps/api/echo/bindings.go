package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/chuo/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=a,-b`. Unknown fields are dropped by the repositories.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	ord.Orderings = core.ParseOrdering(val)
}

type DestroyMultipleRequest struct {
	IDs []string `query:"id"`
}
