package controller

import (
	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/pkg/serverutils"
	"knowledgebase-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReindexController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type reindexController struct {
	regenerationService service.IRegenerationService
}

func NewReindexController(regenerationService service.IRegenerationService) IReindexController {
	return &reindexController{
		regenerationService: regenerationService,
	}
}

func (c *reindexController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1/reindex")
	h.Use(serverutils.JwtMiddleware)
	h.Post("start", c.Start)
	h.Get("status", c.Status)
}

// Start acknowledges immediately; the bulk pass runs in the background and
// progress is observed via Status (or the websocket feed).
func (c *reindexController) Start(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserID(ctx)

	res := c.regenerationService.Start(ctx.Context(), userId)
	if !res.Success {
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.Response[*dto.StartReindexResponse]{
			Code:    fiber.StatusConflict,
			Message: res.Message,
			Data:    res,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Regeneration started", res))
}

func (c *reindexController) Status(ctx *fiber.Ctx) error {
	res := c.regenerationService.Status(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success get reindex status", res))
}
