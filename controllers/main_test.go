package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nahidhasan/mealbox-app/models"
	"github.com/nahidhasan/mealbox-app/router"
	"github.com/nahidhasan/mealbox-app/services"
	"github.com/nahidhasan/mealbox-app/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	os.Exit(m.Run())
}

var testDBCounter int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mealbox_api_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.TrackingUpdate{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// scriptedGateway stands in for shurjoPay in API tests.
type scriptedGateway struct {
	initiateErr  error
	verifyErr    error
	verifyResult *services.PaymentResult
}

func (g *scriptedGateway) InitiatePayment(req services.InitiatePaymentRequest) (*services.InitiateResult, error) {
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	return &services.InitiateResult{
		CheckoutURL: "https://sandbox.shurjopayment.com/checkout/" + req.OrderID,
		SPOrderID:   "sp-" + req.OrderID,
		RawStatus:   "Initiated",
	}, nil
}

func (g *scriptedGateway) VerifyPayment(spOrderID string) (*services.PaymentResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyResult != nil {
		return g.verifyResult, nil
	}
	return &services.PaymentResult{SPOrderID: spOrderID, BankStatus: "Success", TransactionStatus: "Completed", SPCode: "1000"}, nil
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) (models.User, string) {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    name + "@mealbox.test",
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	token, err := utils.GenerateToken(user.ID, role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

func seedMeal(t *testing.T, db *gorm.DB, providerID uint, name string, price float64) models.Meal {
	t.Helper()
	meal := models.Meal{
		ProviderID: providerID,
		Name:       name,
		Price:      price,
		Available:  true,
	}
	if err := db.Create(&meal).Error; err != nil {
		t.Fatalf("failed to seed meal: %v", err)
	}
	return meal
}

func fillCart(t *testing.T, db *gorm.DB, customerID, mealID uint, quantity int) {
	t.Helper()
	_, err := services.NewCartService(db).AddItem(customerID, services.AddItemInput{
		MealID:   mealID,
		Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("failed to fill cart: %v", err)
	}
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

var checkoutBody = gin.H{
	"name":          "Rahim Uddin",
	"email":         "rahim@customer.test",
	"phone":         "01711111111",
	"address":       "House 7, Road 3, Dhanmondi",
	"city":          "Dhaka",
	"zip_code":      "1209",
	"delivery_date": "2025-02-01",
	"delivery_slot": "12:00 - 14:00",
}

func newTestRouter(db *gorm.DB, gateway services.PaymentGateway) *gin.Engine {
	return router.SetupRouter(db, gateway)
}

// trackingNumberOf reads back the persisted tracking number for an order id.
func trackingNumberOf(t *testing.T, db *gorm.DB, orderID uint) string {
	t.Helper()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		t.Fatalf("failed to load order: %v", err)
	}
	return order.TrackingNumber
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
