package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/services"
)

type WalletController struct {
	wallets *services.WalletService
}

func NewWalletController(wallets *services.WalletService) *WalletController {
	return &WalletController{wallets: wallets}
}

func (h *WalletController) Get(c *gin.Context) {
	view, err := h.wallets.Wallet(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WalletController) Statement(c *gin.Context) {
	view, err := h.wallets.Statement(c.Request.Context(), middleware.CurrentUserID(c), c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *WalletController) Recharge(c *gin.Context) {
	var body struct {
		Amount        int64  `json:"amount"`
		PaymentMethod string `json:"payment_method"`
	}
	if !bind(c, &body) {
		return
	}
	res, err := h.wallets.Recharge(c.Request.Context(), middleware.CurrentUserID(c), body.Amount, body.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Wallet recharged successfully",
		"wallet_balance": res.Balance,
		"transaction":    res.Transaction,
	})
}

func (h *WalletController) Update(c *gin.Context) {
	var body struct {
		UserID      uint   `json:"user_id"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if !bind(c, &body) {
		return
	}
	res, err := h.wallets.AdminAdjust(c.Request.Context(), middleware.CurrentUniversityID(c), body.UserID, body.Amount, body.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Wallet updated successfully",
		"wallet_balance": res.Balance,
		"transaction":    res.Transaction,
	})
}

func (h *WalletController) UpdateAll(c *gin.Context) {
	var body struct {
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if !bind(c, &body) {
		return
	}
	res, err := h.wallets.AdminAdjustAll(c.Request.Context(), middleware.CurrentUniversityID(c), body.Amount, body.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Wallets updated",
		"updated": res.Updated,
		"skipped": res.Skipped,
		"failed":  res.Failed,
	})
}

func (h *WalletController) All(c *gin.Context) {
	wallets, err := h.wallets.ListWallets(c.Request.Context(), middleware.CurrentUniversityID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": wallets})
}
