package controller

import (
	"cardiac-assistant-be/internal/dto"
	"cardiac-assistant-be/internal/pkg/serverutils"
	"cardiac-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Classify(ctx *fiber.Ctx) error
	BuildContext(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
	ListCollections(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
	auth    fiber.Handler
}

func NewAssistantController(service service.IAssistantService, auth fiber.Handler) IAssistantController {
	return &assistantController{service: service, auth: auth}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(c.auth)
	h.Post("ask", c.Ask)
	h.Post("classify", c.Classify)
	h.Post("context", c.BuildContext)
	h.Get("session/:id", c.GetSession)
	h.Delete("session/:id", c.ClearSession)
	h.Get("collections", c.ListCollections)
}

func (c *assistantController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.UserContext(), serverutils.ClinicianID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer query", res))
}

func (c *assistantController) Classify(ctx *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.Classify(ctx.UserContext(), &req)
	return ctx.JSON(serverutils.SuccessResponse("Success classify query", res))
}

func (c *assistantController) BuildContext(ctx *fiber.Ctx) error {
	var req dto.BuildContextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.BuildContext(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success build context", res))
}

func (c *assistantController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), serverutils.ClinicianID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *assistantController) ClearSession(ctx *fiber.Ctx) error {
	err := c.service.ClearSession(ctx.UserContext(), serverutils.ClinicianID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear session", nil))
}

func (c *assistantController) ListCollections(ctx *fiber.Ctx) error {
	res, err := c.service.ListCollections(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list collections", res))
}
