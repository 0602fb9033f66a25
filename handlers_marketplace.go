package main

import (
	"net/http"
	"time"

	"munlink/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func listItemsHandler(c *gin.Context) {
	q := db.Model(&models.Item{}).Where("status = ?", models.ItemAvailable)
	if muniID := c.Query("municipality_id"); muniID != "" {
		q = q.Where("municipality_id = ?", muniID)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if txType := c.Query("transaction_type"); txType != "" {
		q = q.Where("transaction_type = ?", txType)
	}

	var items []models.Item
	if err := q.Preload("Municipality").Preload("User").
		Order("created_at desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get items", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func getItemHandler(c *gin.Context) {
	var item models.Item
	if err := db.Preload("Municipality").Preload("User").
		First(&item, "id = ?", c.Param("id")).Error; err != nil || item.Status == models.ItemRemoved {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func createItemHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if user.MunicipalityID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your account has no registered municipality"})
		return
	}

	var req struct {
		Title           string           `json:"title" binding:"required"`
		Description     string           `json:"description"`
		Category        string           `json:"category" binding:"required"`
		Condition       string           `json:"condition"`
		TransactionType string           `json:"transaction_type" binding:"required"`
		Price           *decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.TransactionType {
	case models.TransactionSell:
		if req.Price == nil || req.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Items for sale need a non-negative price"})
			return
		}
	case models.TransactionDonate, models.TransactionLend:
		if req.Price != nil && !req.Price.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Donation and lending listings cannot carry a price"})
			return
		}
		req.Price = nil
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction_type", "details": "Use sell, donate, or lend."})
		return
	}

	item := models.Item{
		UserID:          user.ID,
		MunicipalityID:  *user.MunicipalityID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Condition:       req.Condition,
		TransactionType: req.TransactionType,
		Price:           req.Price,
		Status:          models.ItemAvailable,
	}
	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item listed", "item": item})
}

// updateItemHandler edits an owned listing. Status, ownership, and
// municipality are workflow-managed fields; submitted values for them are
// silently ignored.
func updateItemHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var item models.Item
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	var req struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Category    *string          `json:"category"`
		Condition   *string          `json:"condition"`
		Price       *decimal.Decimal `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Condition != nil {
		updates["condition"] = *req.Condition
	}
	if req.Price != nil && item.TransactionType == models.TransactionSell {
		if req.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Items for sale need a non-negative price"})
			return
		}
		updates["price"] = *req.Price
	}
	if len(updates) > 0 {
		if err := db.Model(&item).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item", "details": err.Error()})
			return
		}
	}
	db.First(&item, item.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Item updated", "item": item})
}

func deleteItemHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var item models.Item
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if err := db.Model(&item).Update("status", models.ItemRemoved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
}

func uploadItemImagesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var item models.Item
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	images := decodeStringList(item.Images)
	for _, file := range files {
		rel, err := saveUpload(c, file, "marketplace")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save images", "details": err.Error()})
			return
		}
		images = append(images, rel)
	}
	if err := db.Model(&item).Update("images", encodeStringList(images)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save images", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Images uploaded", "images": images})
}

func createTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		ItemID uint   `json:"item_id" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item models.Item
	if err := db.First(&item, req.ItemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if item.UserID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot transact with your own item"})
		return
	}
	if item.Status != models.ItemAvailable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This item is no longer available"})
		return
	}

	tx := models.Transaction{
		ItemID:   item.ID,
		BuyerID:  user.ID,
		SellerID: item.UserID,
		Status:   models.StatusPending,
		Notes:    req.Notes,
	}
	err := db.Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(&tx).Error; err != nil {
			return err
		}
		return dbtx.Model(&item).Update("status", models.ItemPending).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction", "details": err.Error()})
		return
	}
	db.Preload("Item").First(&tx, tx.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Transaction created", "transaction": tx})
}

func listMyTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var transactions []models.Transaction
	if err := db.Where("buyer_id = ? OR seller_id = ?", user.ID, user.ID).
		Preload("Item").Preload("Buyer").Preload("Seller").
		Order("created_at desc").Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transactions", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "count": len(transactions)})
}

// completeTransactionHandler lets the seller confirm the handover; the item
// is marked completed with it.
func completeTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var tx models.Transaction
	if err := db.Preload("Item").First(&tx, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	if tx.SellerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the seller can complete a transaction"})
		return
	}
	if tx.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending transactions can be completed"})
		return
	}

	now := time.Now()
	err := db.Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Model(&tx).Updates(map[string]interface{}{
			"status":       models.StatusCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}
		return dbtx.Model(&models.Item{}).Where("id = ?", tx.ItemID).
			Update("status", models.ItemCompleted).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete transaction", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction completed"})
}

// cancelTransactionHandler lets either party back out while pending; the
// item goes back on the market.
func cancelTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var tx models.Transaction
	if err := db.First(&tx, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	if tx.BuyerID != user.ID && tx.SellerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not part of this transaction"})
		return
	}
	if tx.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending transactions can be cancelled"})
		return
	}

	now := time.Now()
	err := db.Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Model(&tx).Updates(map[string]interface{}{
			"status":       "cancelled",
			"cancelled_at": now,
		}).Error; err != nil {
			return err
		}
		return dbtx.Model(&models.Item{}).Where("id = ?", tx.ItemID).
			Update("status", models.ItemAvailable).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel transaction", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction cancelled"})
}
