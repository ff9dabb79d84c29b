package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nahidhasan/mealbox-app/models"
	"github.com/nahidhasan/mealbox-app/services"
)

func TestCheckoutVerifyAndTrackFlow(t *testing.T) {
	db := setupTestDB(t)
	provider, providerToken := seedUser(t, db, "spicekitchen", models.RoleProvider)
	meal := seedMeal(t, db, provider.ID, "Chicken Biryani", 200)
	customer, customerToken := seedUser(t, db, "rahim", models.RoleCustomer)
	fillCart(t, db, customer.ID, meal.ID, 2)

	gateway := &scriptedGateway{verifyResult: &services.PaymentResult{
		BankStatus:        "Success",
		TransactionStatus: "Completed",
		SPCode:            "1000",
		Method:            "bKash",
	}}
	r := newTestRouter(db, gateway)

	// Checkout.
	w := doRequest(t, r, http.MethodPost, "/orders/from-cart", customerToken, checkoutBody)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["checkout_url"])
	order := data["order"].(map[string]interface{})
	assert.Equal(t, "Pending", order["status"])
	assert.Equal(t, 520.0, order["total_price"])
	orderID := uint(order["order_id"].(float64))
	trackingNumber := order["tracking_number"].(string)

	// Gateway return URL confirms the payment.
	var stored models.Order
	db.First(&stored, orderID)
	w = doRequest(t, r, http.MethodGet, "/orders/verify?order_id="+stored.Transaction.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Provider moves the order along.
	w = doRequest(t, r, http.MethodPatch, "/orders/"+itoa(orderID)+"/tracking", providerToken,
		map[string]string{"stage": "shipped", "message": "Rider picked up the order"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Anyone can follow the public tracking page.
	w = doRequest(t, r, http.MethodGet, "/orders/tracking/"+trackingNumber, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	tracking := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Shipped", tracking["status"])
	stages := tracking["tracking_stages"].(map[string]interface{})
	assert.Equal(t, true, stages["placed"])
	assert.Equal(t, true, stages["shipped"])
	assert.Equal(t, false, stages["delivered"])
}

func TestCheckoutGatewayDownReturns502WithOrder(t *testing.T) {
	db := setupTestDB(t)
	provider, _ := seedUser(t, db, "currycorner", models.RoleProvider)
	meal := seedMeal(t, db, provider.ID, "Beef Curry", 350)
	customer, token := seedUser(t, db, "karim", models.RoleCustomer)
	fillCart(t, db, customer.ID, meal.ID, 1)

	gateway := &scriptedGateway{initiateErr: fmt.Errorf("%w: connection refused", services.ErrGatewayUnavailable)}
	r := newTestRouter(db, gateway)

	w := doRequest(t, r, http.MethodPost, "/orders/from-cart", token, checkoutBody)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// The order itself was created and is retryable.
	data := decodeBody(t, w)["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	assert.Equal(t, "Pending", order["status"])

	var count int64
	db.Model(&models.Order{}).Where("customer_id = ?", customer.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	_, token := seedUser(t, db, "jamal", models.RoleCustomer)
	r := newTestRouter(db, &scriptedGateway{})

	w := doRequest(t, r, http.MethodPost, "/orders/from-cart", token, checkoutBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTrackingAuthorization(t *testing.T) {
	db := setupTestDB(t)
	ownerProvider, ownerToken := seedUser(t, db, "dhakafood", models.RoleProvider)
	_, otherToken := seedUser(t, db, "tiffinbox", models.RoleProvider)
	meal := seedMeal(t, db, ownerProvider.ID, "Khichuri", 120)
	customer, customerToken := seedUser(t, db, "salma", models.RoleCustomer)
	fillCart(t, db, customer.ID, meal.ID, 1)
	r := newTestRouter(db, &scriptedGateway{})

	w := doRequest(t, r, http.MethodPost, "/orders/from-cart", customerToken, checkoutBody)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	orderID := itoa(uint(data["order"].(map[string]interface{})["order_id"].(float64)))
	advance := map[string]string{"stage": "approved", "message": "Accepted"}

	// Customers cannot touch tracking at all.
	w = doRequest(t, r, http.MethodPatch, "/orders/"+orderID+"/tracking", customerToken, advance)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A provider without a line item in the order is rejected.
	w = doRequest(t, r, http.MethodPatch, "/orders/"+orderID+"/tracking", otherToken, advance)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owning provider goes through.
	w = doRequest(t, r, http.MethodPatch, "/orders/"+orderID+"/tracking", ownerToken, advance)
	assert.Equal(t, http.StatusOK, w.Code)

	// Moving backwards is a client error, not a silent no-op.
	w = doRequest(t, r, http.MethodPatch, "/orders/"+orderID+"/tracking", ownerToken,
		map[string]string{"stage": "placed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderDetailVisibility(t *testing.T) {
	db := setupTestDB(t)
	provider, _ := seedUser(t, db, "bhaterhotel", models.RoleProvider)
	meal := seedMeal(t, db, provider.ID, "Bhuna Khichuri", 150)
	owner, ownerToken := seedUser(t, db, "nusrat", models.RoleCustomer)
	_, strangerToken := seedUser(t, db, "hasib", models.RoleCustomer)
	_, adminToken := seedUser(t, db, "admin", models.RoleAdmin)
	fillCart(t, db, owner.ID, meal.ID, 1)
	r := newTestRouter(db, &scriptedGateway{})

	w := doRequest(t, r, http.MethodPost, "/orders/from-cart", ownerToken, checkoutBody)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	orderID := itoa(uint(data["order"].(map[string]interface{})["order_id"].(float64)))

	w = doRequest(t, r, http.MethodGet, "/orders/"+orderID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/orders/"+orderID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodGet, "/orders/"+orderID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Listings are scoped to the caller.
	w = doRequest(t, r, http.MethodGet, "/orders/my-orders", strangerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	if body["data"] != nil {
		assert.Empty(t, body["data"].([]interface{}))
	}
}

func TestAdminDeleteOrder(t *testing.T) {
	db := setupTestDB(t)
	provider, _ := seedUser(t, db, "spicehouse", models.RoleProvider)
	meal := seedMeal(t, db, provider.ID, "Morog Polao", 260)
	customer, customerToken := seedUser(t, db, "mitu", models.RoleCustomer)
	_, adminToken := seedUser(t, db, "superadmin", models.RoleAdmin)
	fillCart(t, db, customer.ID, meal.ID, 1)
	r := newTestRouter(db, &scriptedGateway{})

	w := doRequest(t, r, http.MethodPost, "/orders/from-cart", customerToken, checkoutBody)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	orderID := uint(data["order"].(map[string]interface{})["order_id"].(float64))
	trackingNumber := trackingNumberOf(t, db, orderID)

	// Customers cannot reach the admin delete.
	w = doRequest(t, r, http.MethodDelete, "/admin/orders/"+itoa(orderID), customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/admin/orders/"+itoa(orderID), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/orders/tracking/"+trackingNumber, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyPaymentEndpointValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, &scriptedGateway{})

	w := doRequest(t, r, http.MethodGet, "/orders/verify", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodGet, "/orders/verify?order_id=sp-unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
