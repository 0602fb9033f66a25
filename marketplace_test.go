package main

import (
	"net/http"
	"testing"

	"munlink/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listItem(t *testing.T, r http.Handler, token string, payload map[string]interface{}) uint {
	t.Helper()
	w := doJSON(r, "POST", "/api/marketplace/items", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := parseBody(t, w)["item"].(map[string]interface{})
	return uint(item["id"].(float64))
}

func TestSelfTransactionBlocked(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Castillejos")
	seller := createTestResident(t, "seller1", muni, brgy, true)
	token := tokenFor(t, seller)

	itemID := listItem(t, r, token, map[string]interface{}{
		"title":            "Bicycle",
		"category":         "vehicles",
		"transaction_type": models.TransactionSell,
		"price":            "1500.00",
	})

	w := doJSON(r, "POST", "/api/marketplace/transactions", token, map[string]interface{}{"item_id": itemID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "your own item")
}

func TestOwnerStatusEditIgnored(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "San Marcelino")
	owner := createTestResident(t, "owner1", muni, brgy, true)
	token := tokenFor(t, owner)

	itemID := listItem(t, r, token, map[string]interface{}{
		"title":            "Rice cooker",
		"category":         "appliances",
		"transaction_type": models.TransactionDonate,
	})

	w := doJSON(r, "PUT", "/api/marketplace/items/"+itoa(itemID), token, map[string]interface{}{
		"title":  "Rice cooker (good as new)",
		"status": models.ItemCompleted,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var item models.Item
	require.NoError(t, db.First(&item, itemID).Error)
	assert.Equal(t, "Rice cooker (good as new)", item.Title)
	assert.Equal(t, models.ItemAvailable, item.Status)
	assert.Equal(t, owner.ID, item.UserID)
}

func TestNegativePriceRejectedOnUpdate(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Candelaria")
	owner := createTestResident(t, "seller2", muni, brgy, true)
	token := tokenFor(t, owner)

	itemID := listItem(t, r, token, map[string]interface{}{
		"title":            "Guitar",
		"category":         "music",
		"transaction_type": models.TransactionSell,
		"price":            "2000.00",
	})

	w := doJSON(r, "PUT", "/api/marketplace/items/"+itoa(itemID), token, map[string]interface{}{
		"price": "-50.00",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "non-negative price")

	var item models.Item
	require.NoError(t, db.First(&item, itemID).Error)
	require.NotNil(t, item.Price)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("2000.00")))
}

func TestDonationCannotCarryPrice(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "San Narciso")
	owner := createTestResident(t, "donor1", muni, brgy, true)

	w := doJSON(r, "POST", "/api/marketplace/items", tokenFor(t, owner), map[string]interface{}{
		"title":            "School books",
		"category":         "books",
		"transaction_type": models.TransactionDonate,
		"price":            "100.00",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "price")
}

func TestTransactionLifecycle(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Santa Cruz")
	seller := createTestResident(t, "seller2", muni, brgy, true)
	buyer := createTestResident(t, "buyer2", muni, brgy, true)
	sellerToken := tokenFor(t, seller)
	buyerToken := tokenFor(t, buyer)

	itemID := listItem(t, r, sellerToken, map[string]interface{}{
		"title":            "Guitar",
		"category":         "music",
		"transaction_type": models.TransactionSell,
		"price":            "2500.00",
	})

	w := doJSON(r, "POST", "/api/marketplace/transactions", buyerToken, map[string]interface{}{"item_id": itemID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := parseBody(t, w)["transaction"].(map[string]interface{})
	txID := itoa(uint(tx["id"].(float64)))

	// the item leaves the public listing while pending
	var item models.Item
	require.NoError(t, db.First(&item, itemID).Error)
	assert.Equal(t, models.ItemPending, item.Status)

	// second buyer cannot grab a pending item
	third := createTestResident(t, "buyer3", muni, brgy, true)
	w = doJSON(r, "POST", "/api/marketplace/transactions", tokenFor(t, third), map[string]interface{}{"item_id": itemID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// only the seller may complete
	w = doJSON(r, "POST", "/api/marketplace/transactions/"+txID+"/complete", buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(r, "POST", "/api/marketplace/transactions/"+txID+"/complete", sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, db.First(&item, itemID).Error)
	assert.Equal(t, models.ItemCompleted, item.Status)
}

func TestCancelReturnsItemToMarket(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "San Antonio")
	seller := createTestResident(t, "seller4", muni, brgy, true)
	buyer := createTestResident(t, "buyer4", muni, brgy, true)

	itemID := listItem(t, r, tokenFor(t, seller), map[string]interface{}{
		"title":            "Ladder",
		"category":         "tools",
		"transaction_type": models.TransactionLend,
	})

	buyerToken := tokenFor(t, buyer)
	w := doJSON(r, "POST", "/api/marketplace/transactions", buyerToken, map[string]interface{}{"item_id": itemID})
	require.Equal(t, http.StatusCreated, w.Code)
	tx := parseBody(t, w)["transaction"].(map[string]interface{})
	txID := itoa(uint(tx["id"].(float64)))

	w = doJSON(r, "POST", "/api/marketplace/transactions/"+txID+"/cancel", buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var item models.Item
	require.NoError(t, db.First(&item, itemID).Error)
	assert.Equal(t, models.ItemAvailable, item.Status)
}
