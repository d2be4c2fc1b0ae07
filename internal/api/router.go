package api

import (
	"github.com/gin-gonic/gin"

	"github.com/averyk/lifeledger/internal/api/controller"
	"github.com/averyk/lifeledger/internal/api/middleware"
)

// RegisterRoutes wires every endpoint onto the engine.
func RegisterRoutes(
	r *gin.Engine,
	authCtrl *controller.AuthController,
	walletCtrl *controller.WalletController,
	expenseCtrl *controller.ExpenseController,
	subCtrl *controller.SubscriptionController,
	limitCtrl *controller.LimitController,
	insightCtrl *controller.InsightController,
) {
	r.Use(middleware.Cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/api/v1/auth")
	{
		public.POST("/register", authCtrl.Register)
		public.POST("/login", authCtrl.Login)
	}

	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		protected.POST("/push-token", authCtrl.SetPushToken)

		protected.POST("/wallet", walletCtrl.Create)
		protected.GET("/wallet", walletCtrl.Get)
		protected.PUT("/wallet", walletCtrl.Update)
		protected.PUT("/wallet/balance", walletCtrl.SetBalance)

		protected.POST("/expenses", expenseCtrl.Create)
		protected.GET("/expenses", expenseCtrl.List)
		protected.PUT("/expenses/:id", expenseCtrl.Update)
		protected.DELETE("/expenses/:id", expenseCtrl.Delete)
		protected.POST("/expenses/:id/refund", expenseCtrl.Refund)
		protected.POST("/expenses/:id/promote", subCtrl.Promote)
		protected.POST("/expenses/quick-add", expenseCtrl.QuickAdd)
		protected.POST("/expenses/predict", expenseCtrl.Predict)
		protected.GET("/expenses/statistics", expenseCtrl.Statistics)

		protected.POST("/subscriptions", subCtrl.Create)
		protected.GET("/subscriptions", subCtrl.List)
		protected.POST("/subscriptions/:id/cancel", subCtrl.Cancel)
		protected.POST("/subscriptions/:id/renew", subCtrl.Renew)

		protected.POST("/limits", limitCtrl.Create)
		protected.GET("/limits", limitCtrl.List)
		protected.PUT("/limits/:id", limitCtrl.Update)
		protected.DELETE("/limits/:id", limitCtrl.Delete)

		protected.GET("/insights/budget", insightCtrl.Budget)
		protected.GET("/insights/anomaly", insightCtrl.Anomaly)
		protected.GET("/insights/summary", insightCtrl.Summary)
		protected.GET("/insights/groups", insightCtrl.Groups)
	}
}
