package controllers

import (
	"learnity/backend/config"
	"learnity/backend/services"
	"learnity/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WalletController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Svc *services.Services
}

func NewWalletController(db *gorm.DB, cfg *config.Config, svc *services.Services) *WalletController {
	return &WalletController{DB: db, Cfg: cfg, Svc: svc}
}

type TopUpRequest struct {
	Amount       int64  `json:"amount" validate:"required,min=100,max=1000000"`
	Method       string `json:"method" validate:"required,oneof=card paypal"`
	PaymentToken string `json:"payment_token" validate:"required"`
}

func (wc *WalletController) GetWallet(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}

	wallet, err := wc.Svc.Wallet.Get(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return utils.OK(c, wallet)
}

func (wc *WalletController) GetTransactions(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	page := utils.PageFromQuery(c)

	txs, total, err := wc.Svc.Wallet.Transactions(c.UserContext(), user.ID, page)
	if err != nil {
		return err
	}
	return utils.Paginate(c, txs, total, page)
}

// TopUp godoc
// @Summary Top up the wallet
// @Description Charges the payment gateway; amounts are in cents
// @Tags wallet
// @Accept json
// @Produce json
// @Param input body TopUpRequest true "Top-up"
// @Success 201 {object} utils.SuccessResponse
// @Failure 402 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /wallet/topup [post]
func (wc *WalletController) TopUp(c *fiber.Ctx) error {
	user, err := utils.CurrentUser(c)
	if err != nil {
		return err
	}
	var input TopUpRequest
	if err := utils.ParseBody(c, &input); err != nil {
		return err
	}

	tx, err := wc.Svc.Wallet.TopUp(c.UserContext(), user.ID, services.TopUpInput{
		Amount: input.Amount,
		Method: input.Method,
		Token:  input.PaymentToken,
	})
	if err != nil {
		return err
	}

	wallet, err := wc.Svc.Wallet.Get(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return utils.Created(c, fiber.Map{
		"transaction": tx,
		"wallet":      wallet,
	})
}
