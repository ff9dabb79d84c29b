package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nahidhasan/mealbox-app/models"
	"github.com/nahidhasan/mealbox-app/services"
	"github.com/nahidhasan/mealbox-app/utils"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{carts: services.NewCartService(db)}
}

type cartResponse struct {
	Cart    *models.Cart              `json:"cart"`
	Pricing services.PricingBreakdown `json:"pricing"`
}

// AddItem -> POST /cart. The body's price field, if sent, is ignored; the
// catalog price is authoritative.
func (cc *CartController) AddItem(c *gin.Context) {
	customerID := c.GetUint("userID")

	type request struct {
		MealID        uint                 `json:"meal_id" binding:"required"`
		Quantity      int                  `json:"quantity" binding:"required"`
		DeliveryDate  string               `json:"delivery_date"`
		DeliverySlot  string               `json:"delivery_slot"`
		Customization models.Customization `json:"customization"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cart, err := cc.carts.AddItem(customerID, services.AddItemInput{
		MealID:        req.MealID,
		Quantity:      req.Quantity,
		DeliveryDate:  req.DeliveryDate,
		DeliverySlot:  req.DeliverySlot,
		Customization: req.Customization,
	})
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Item added to cart", cartResponse{
		Cart:    cart,
		Pricing: services.CalculatePricing(cart.Items),
	})
}

// UpdateItem -> PATCH /cart/item/:meal_id. Quantity and customization are each
// optional; at least one must be present.
func (cc *CartController) UpdateItem(c *gin.Context) {
	customerID := c.GetUint("userID")
	mealID, _ := strconv.Atoi(c.Param("meal_id"))

	type request struct {
		Quantity      *int                  `json:"quantity"`
		Customization *models.Customization `json:"customization"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity == nil && req.Customization == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("quantity or customization is required"))
		return
	}

	cart, err := cc.carts.UpdateItem(customerID, uint(mealID), services.UpdateItemInput{
		Quantity:      req.Quantity,
		Customization: req.Customization,
	})
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart item updated", cartResponse{
		Cart:    cart,
		Pricing: services.CalculatePricing(cart.Items),
	})
}

// RemoveItem -> DELETE /cart/item/:meal_id.
func (cc *CartController) RemoveItem(c *gin.Context) {
	customerID := c.GetUint("userID")
	mealID, _ := strconv.Atoi(c.Param("meal_id"))

	cart, err := cc.carts.RemoveItem(customerID, uint(mealID))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart item removed", cartResponse{
		Cart:    cart,
		Pricing: services.CalculatePricing(cart.Items),
	})
}

// GetCart -> GET /cart. A missing cart reads as an empty cart.
func (cc *CartController) GetCart(c *gin.Context) {
	customerID := c.GetUint("userID")

	cart, pricing, err := cc.carts.GetCart(customerID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart detail", cartResponse{Cart: cart, Pricing: pricing})
}

// Clear -> DELETE /cart. Idempotent.
func (cc *CartController) Clear(c *gin.Context) {
	customerID := c.GetUint("userID")

	if err := cc.carts.Clear(customerID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart cleared", nil)
}
