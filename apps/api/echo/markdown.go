package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/prefeitura-rio/gorio-admin/core/markdown"
)

type (
	SerializeRequest struct {
		Doc *markdown.Node `json:"doc" validate:"required"`
	}

	SerializeResponse struct {
		Markdown string `json:"markdown"`
	}

	ParseRequest struct {
		Markdown string `json:"markdown"`
	}

	ParseResponse struct {
		Doc  markdown.Node `json:"doc"`
		HTML string        `json:"html"`
	}
)

func (r *SerializeRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type markdownApi struct {
	validate *validator.Validate
}

func registerMarkdownAPI(g *echo.Group, validate *validator.Validate) {
	api := markdownApi{validate: validate}

	mg := g.Group("/markdown")
	mg.POST("/serialize", api.serialize)
	mg.POST("/parse", api.parse)
}

func (api *markdownApi) serialize(ctx echo.Context) error {
	var data SerializeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SerializeRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SerializeResponse{Markdown: markdown.ToMarkdown(*data.Doc)})
}

func (api *markdownApi) parse(ctx echo.Context) error {
	var data ParseRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ParseRequest")
	}
	doc := markdown.FromMarkdown(data.Markdown)
	return ctx.JSON(http.StatusOK, ParseResponse{Doc: doc, HTML: markdown.ToHTML(doc)})
}
