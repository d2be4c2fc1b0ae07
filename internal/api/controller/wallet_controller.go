package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/averyk/lifeledger/internal/api/response"
	"github.com/averyk/lifeledger/internal/service"
)

type WalletController struct {
	wallets *service.WalletService
}

func NewWalletController(wallets *service.WalletService) *WalletController {
	return &WalletController{wallets: wallets}
}

type CreateWalletRequest struct {
	InitialBalance          decimal.Decimal `json:"initial_balance"`
	Income                  decimal.Decimal `json:"income"`
	MonthlyPercentageTarget float64         `json:"monthly_percentage_target"`
}

func (ctrl *WalletController) Create(c *gin.Context) {
	userID := c.GetString("userID")

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	wallet, err := ctrl.wallets.Create(c.Request.Context(), userID,
		req.InitialBalance, req.Income, req.MonthlyPercentageTarget)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, wallet)
}

func (ctrl *WalletController) Get(c *gin.Context) {
	wallet, err := ctrl.wallets.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, wallet)
}

type UpdateWalletRequest struct {
	Income                  *decimal.Decimal `json:"income,omitempty"`
	MonthlyPercentageTarget *float64         `json:"monthly_percentage_target,omitempty"`
	PaycheckDate            *string          `json:"paycheck_date,omitempty"`
}

func (ctrl *WalletController) Update(c *gin.Context) {
	userID := c.GetString("userID")

	var req UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	in := service.UpdateWalletInput{
		Income:                  req.Income,
		MonthlyPercentageTarget: req.MonthlyPercentageTarget,
	}
	if req.PaycheckDate != nil {
		t, err := parseDate(*req.PaycheckDate)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid paycheck date")
			return
		}
		if !t.IsZero() {
			in.PaycheckDate = &t
		}
	}

	wallet, err := ctrl.wallets.Update(c.Request.Context(), userID, in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, wallet)
}

type SetBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// SetBalance records a correction entry so the requested balance and the
// ledger stay consistent.
func (ctrl *WalletController) SetBalance(c *gin.Context) {
	userID := c.GetString("userID")

	var req SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	wallet, err := ctrl.wallets.SetBalance(c.Request.Context(), userID, req.Balance)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, wallet)
}
