package controller

import (
	"cardiac-assistant-be/internal/dto"
	"cardiac-assistant-be/internal/pkg/serverutils"
	"cardiac-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
	auth    fiber.Handler
}

func NewDocumentController(service service.IDocumentService, auth fiber.Handler) IDocumentController {
	return &documentController{service: service, auth: auth}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(c.auth)
	h.Post("", c.Index)
	h.Delete(":id", c.Delete)
}

// Index accepts the document for asynchronous embedding.
func (c *documentController) Index(ctx *fiber.Ctx) error {
	var req dto.IndexDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Index(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	resp := serverutils.SuccessResponse("Document queued for indexing", res)
	resp.Code = fiber.StatusAccepted
	return ctx.Status(fiber.StatusAccepted).JSON(resp)
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	res, err := c.service.Delete(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document deleted", res))
}
