package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/averyk/lifeledger/internal/api/response"
	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/service"
)

type SubscriptionController struct {
	subs *service.SubscriptionService
}

func NewSubscriptionController(subs *service.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subs: subs}
}

type CreateSubscriptionRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	Category     string          `json:"category"`
	BillingCycle string          `json:"billing_cycle" binding:"required"`
	DateStart    string          `json:"date_start"`
	DateEnd      string          `json:"date_end"`
}

func (ctrl *SubscriptionController) Create(c *gin.Context) {
	userID := c.GetString("userID")

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	in := service.CreateSubscriptionInput{
		Amount:       req.Amount,
		Description:  req.Description,
		Category:     req.Category,
		BillingCycle: model.BillingCycle(req.BillingCycle),
	}
	var err error
	if in.DateStart, err = parseDate(req.DateStart); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid start date")
		return
	}
	if req.DateEnd != "" {
		end, err := parseDate(req.DateEnd)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid end date")
			return
		}
		in.DateEnd = &end
	}

	sub, err := ctrl.subs.Create(c.Request.Context(), userID, in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sub)
}

func (ctrl *SubscriptionController) List(c *gin.Context) {
	subs, err := ctrl.subs.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, subs)
}

func (ctrl *SubscriptionController) Cancel(c *gin.Context) {
	userID := c.GetString("userID")
	subID, ok := pathID(c)
	if !ok {
		return
	}

	sub, err := ctrl.subs.Cancel(c.Request.Context(), userID, subID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sub)
}

func (ctrl *SubscriptionController) Renew(c *gin.Context) {
	userID := c.GetString("userID")
	subID, ok := pathID(c)
	if !ok {
		return
	}

	sub, err := ctrl.subs.Renew(c.Request.Context(), userID, subID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sub)
}

// Promote turns an existing expense into a monthly subscription, or
// reactivates the one it already belongs to.
func (ctrl *SubscriptionController) Promote(c *gin.Context) {
	userID := c.GetString("userID")
	expenseID, ok := pathID(c)
	if !ok {
		return
	}

	sub, err := ctrl.subs.Promote(c.Request.Context(), userID, expenseID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, sub)
}
