package controllers

import (
	"learnity/backend/config"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MessageController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewMessageController(db *gorm.DB, cfg *config.Config, svc *services.Services) *MessageController {
	return &MessageController{DB: db, Cfg: cfg, Svc: svc}
}

type SendMessageRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Body        string `json:"body" validate:"required,max=4000"`
}

func (mc *MessageController) Send(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input SendMessageRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	msg, err := mc.Svc.Messaging.Send(c.UserContext(), user.ID, input.RecipientID, input.Body)
	if err != nil {
		return err
	}
	return utils.Created(c, msg)
}

func (mc *MessageController) Conversations(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	conversations, err := mc.Svc.Messaging.Conversations(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return utils.OK(c, conversations)
}

func (mc *MessageController) Messages(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	page := utils.PageFromQuery(c)

	messages, total, err := mc.Svc.Messaging.Messages(c.UserContext(), user.ID, id, page)
	if err != nil {
		return err
	}
	return utils.Paginate(c, messages, total, page)
}

func (mc *MessageController) MarkRead(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return err
	}
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	marked, err := mc.Svc.Messaging.MarkRead(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"marked": marked})
}
