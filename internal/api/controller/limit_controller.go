package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/averyk/lifeledger/internal/api/response"
	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/service"
)

type LimitController struct {
	limits *service.LimitService
}

func NewLimitController(limits *service.LimitService) *LimitController {
	return &LimitController{limits: limits}
}

type LimitRequest struct {
	Category *string         `json:"category,omitempty"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Period   string          `json:"period" binding:"required"`
}

func (req *LimitRequest) toInput() service.LimitInput {
	return service.LimitInput{
		Category: req.Category,
		Amount:   req.Amount,
		Period:   model.LimitPeriod(req.Period),
	}
}

func (ctrl *LimitController) Create(c *gin.Context) {
	userID := c.GetString("userID")

	var req LimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	limit, err := ctrl.limits.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, limit)
}

func (ctrl *LimitController) Update(c *gin.Context) {
	userID := c.GetString("userID")
	limitID, ok := pathID(c)
	if !ok {
		return
	}

	var req LimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}

	limit, err := ctrl.limits.Update(c.Request.Context(), userID, limitID, req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, limit)
}

func (ctrl *LimitController) Delete(c *gin.Context) {
	userID := c.GetString("userID")
	limitID, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctrl.limits.Delete(c.Request.Context(), userID, limitID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

func (ctrl *LimitController) List(c *gin.Context) {
	limits, err := ctrl.limits.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, limits)
}
