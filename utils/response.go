package utils

import (
	"github.com/kataras/iris/v12"
)

// PageMeta describes one page of a back-office listing (admin users,
// experiences). Totals come from a separate count query.
type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// JSONPage writes the data/meta/links envelope every Veever listing endpoint
// returns. Links stays empty; the web client paginates from meta alone.
func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	ctx.JSON(iris.Map{
		"data":  data,
		"meta":  PageMeta{Page: page, PerPage: perPage, Total: total},
		"links": iris.Map{},
	})
}

// JSONError writes a machine-readable error code with a human message, used by
// the admin handlers that do not go through the problem-details helpers.
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}
