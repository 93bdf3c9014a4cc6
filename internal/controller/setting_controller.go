package controller

import (
	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/pkg/serverutils"
	"knowledgebase-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	UpdateEmbeddingProvider(ctx *fiber.Ctx) error
}

type settingController struct {
	settingService service.ISettingService
}

func NewSettingController(settingService service.ISettingService) ISettingController {
	return &settingController{
		settingService: settingService,
	}
}

func (c *settingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/settings/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Show)
	h.Put("embedding-provider", c.UpdateEmbeddingProvider)
}

func (c *settingController) Show(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserID(ctx)

	res, err := c.settingService.GetSettings(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show settings", res))
}

func (c *settingController) UpdateEmbeddingProvider(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserID(ctx)

	var req dto.UpdateEmbeddingProviderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.settingService.UpdateEmbeddingProvider(ctx.Context(), userId, &req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update settings", res))
}
