package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/averyk/lifeledger/internal/api/response"
	"github.com/averyk/lifeledger/internal/service"
)

type InsightController struct {
	wallets  *service.WalletService
	insights *service.InsightService
}

func NewInsightController(wallets *service.WalletService, insights *service.InsightService) *InsightController {
	return &InsightController{wallets: wallets, insights: insights}
}

func (ctrl *InsightController) Budget(c *gin.Context) {
	wallet, err := ctrl.wallets.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}

	status, err := ctrl.insights.BudgetStatus(c.Request.Context(), wallet, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, status)
}

func (ctrl *InsightController) Anomaly(c *gin.Context) {
	wallet, err := ctrl.wallets.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}

	report, err := ctrl.insights.CheckAnomaly(c.Request.Context(), wallet, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, report)
}

type SummaryRequest struct {
	Period string `form:"period,default=daily"`
}

func (ctrl *InsightController) Summary(c *gin.Context) {
	wallet, err := ctrl.wallets.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}

	var req SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters")
		return
	}

	now := time.Now()
	var summary *service.PeriodSummary
	switch req.Period {
	case "daily":
		summary, err = ctrl.insights.DailySummary(c.Request.Context(), wallet, now)
	case "weekly":
		summary, err = ctrl.insights.WeeklySummary(c.Request.Context(), wallet, now)
	case "monthly":
		summary, err = ctrl.insights.MonthlySummary(c.Request.Context(), wallet, now)
	default:
		response.Error(c, http.StatusBadRequest, "unknown period")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, summary)
}

type GroupsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Limit     int    `form:"limit,default=5"`
}

// Groups surfaces the top spending clusters for a window, defaulting to
// the last 30 days.
func (ctrl *InsightController) Groups(c *gin.Context) {
	wallet, err := ctrl.wallets.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}

	var req GroupsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters")
		return
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if req.StartDate != "" {
		if from, err = parseDate(req.StartDate); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid start date")
			return
		}
	}
	if req.EndDate != "" {
		if to, err = parseDate(req.EndDate); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid end date")
			return
		}
		to = to.AddDate(0, 0, 1)
	}

	groups, err := ctrl.insights.TopSpendingGroups(c.Request.Context(), wallet, from, to, req.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, groups)
}
