package routes

import "github.com/gin-gonic/gin"

func WalletRoutes(r *gin.RouterGroup, h handlers) {
	wallet := r.Group("/wallet")
	{
		wallet.GET("/get", h.requireAuth, h.wallets.Get)
		wallet.POST("/recharge", h.requireAuth, h.wallets.Recharge)
		wallet.GET("/statement", h.requireAuth, h.wallets.Statement)

		wallet.PUT("/update", h.requireAdmin, h.wallets.Update)
		wallet.PUT("/update-all", h.requireAdmin, h.wallets.UpdateAll)
		wallet.GET("/all", h.requireAdmin, h.wallets.All)
	}
}
