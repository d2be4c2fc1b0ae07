package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/averyk/lifeledger/internal/api/response"
	"github.com/averyk/lifeledger/internal/model"
	"github.com/averyk/lifeledger/internal/repository"
	"github.com/averyk/lifeledger/internal/service"
)

type ExpenseController struct {
	expenses *service.ExpenseService
	predict  *service.PredictService
}

func NewExpenseController(expenses *service.ExpenseService, predict *service.PredictService) *ExpenseController {
	return &ExpenseController{expenses: expenses, predict: predict}
}

type SubexpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

type CreateExpenseRequest struct {
	Amount          decimal.Decimal     `json:"amount" binding:"required"`
	Type            string              `json:"type" binding:"required"`
	Description     string              `json:"description" binding:"required"`
	Category        string              `json:"category"`
	Date            string              `json:"date"`
	Schedule        bool                `json:"schedule"`
	Note            string              `json:"note"`
	Shop            string              `json:"shop"`
	Tags            string              `json:"tags"`
	SpontaneousRate float64             `json:"spontaneous_rate"`
	Location        *string             `json:"location,omitempty"`
	Subexpenses     []SubexpenseRequest `json:"subexpenses,omitempty"`
}

func (ctrl *ExpenseController) Create(c *gin.Context) {
	userID := c.GetString("userID")

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid date")
		return
	}

	in := service.CreateExpenseInput{
		Amount:          req.Amount,
		Type:            model.ExpenseType(req.Type),
		Description:     req.Description,
		Category:        req.Category,
		Date:            date,
		Schedule:        req.Schedule,
		Note:            req.Note,
		Shop:            req.Shop,
		Tags:            req.Tags,
		SpontaneousRate: req.SpontaneousRate,
		Location:        req.Location,
	}
	for _, sub := range req.Subexpenses {
		in.Subexpenses = append(in.Subexpenses, service.SubexpenseInput{
			Amount:      sub.Amount,
			Category:    sub.Category,
			Description: sub.Description,
		})
	}

	expense, err := ctrl.expenses.Create(c.Request.Context(), userID, in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, expense)
}

type ListExpensesRequest struct {
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
	Category  string `form:"category"`
	Type      string `form:"type"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type ListExpensesResponse struct {
	List  []model.Expense `json:"list"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
}

func (ctrl *ExpenseController) List(c *gin.Context) {
	userID := c.GetString("userID")

	var req ListExpensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters")
		return
	}

	filter := repository.ExpenseFilter{
		Category: req.Category,
		Type:     model.ExpenseType(req.Type),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	var err error
	if filter.StartDate, err = parseDate(req.StartDate); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid start date")
		return
	}
	if filter.EndDate, err = parseDate(req.EndDate); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid end date")
		return
	}
	if !filter.EndDate.IsZero() {
		// Make the end date inclusive.
		filter.EndDate = filter.EndDate.AddDate(0, 0, 1)
	}

	list, total, err := ctrl.expenses.List(c.Request.Context(), userID, filter)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, ListExpensesResponse{List: list, Total: total, Page: req.Page})
}

type UpdateExpenseRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Type            string          `json:"type" binding:"required"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Date            string          `json:"date"`
	Note            string          `json:"note"`
	Shop            string          `json:"shop"`
	Tags            string          `json:"tags"`
	SpontaneousRate float64         `json:"spontaneous_rate"`
}

func (ctrl *ExpenseController) Update(c *gin.Context) {
	userID := c.GetString("userID")
	expenseID, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid date")
		return
	}

	expense, err := ctrl.expenses.Update(c.Request.Context(), userID, expenseID, service.UpdateExpenseInput{
		Amount:          req.Amount,
		Type:            model.ExpenseType(req.Type),
		Description:     req.Description,
		Category:        req.Category,
		Date:            date,
		Note:            req.Note,
		Shop:            req.Shop,
		Tags:            req.Tags,
		SpontaneousRate: req.SpontaneousRate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, expense)
}

func (ctrl *ExpenseController) Delete(c *gin.Context) {
	userID := c.GetString("userID")
	expenseID, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctrl.expenses.Delete(c.Request.Context(), userID, expenseID); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

func (ctrl *ExpenseController) Refund(c *gin.Context) {
	userID := c.GetString("userID")
	expenseID, ok := pathID(c)
	if !ok {
		return
	}

	expense, err := ctrl.expenses.Refund(c.Request.Context(), userID, expenseID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, expense)
}

type QuickAddRequest struct {
	Description string `json:"description" binding:"required"`
}

// QuickAdd books an expense from a free-text description via the
// categorizer.
func (ctrl *ExpenseController) QuickAdd(c *gin.Context) {
	userID := c.GetString("userID")

	var req QuickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters")
		return
	}

	expense, err := ctrl.predict.QuickAdd(c.Request.Context(), userID, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, expense)
}

// Predict returns the categorization without saving anything.
func (ctrl *ExpenseController) Predict(c *gin.Context) {
	userID := c.GetString("userID")

	var req QuickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters")
		return
	}

	prediction, err := ctrl.predict.Predict(c.Request.Context(), userID, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, prediction)
}

type StatisticsRequest struct {
	Year  int `form:"year"`
	Month int `form:"month"`
}

func (ctrl *ExpenseController) Statistics(c *gin.Context) {
	userID := c.GetString("userID")

	var req StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid parameters")
		return
	}
	now := time.Now()
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.Month == 0 {
		req.Month = int(now.Month())
	}

	stats, err := ctrl.expenses.MonthStatistics(c.Request.Context(), userID, req.Year, req.Month)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, stats)
}

// pathID parses the :id route parameter, responding with 400 on garbage.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}
