package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, &scriptedGateway{})

	w := doRequest(t, r, http.MethodPost, "/register", "", gin.H{
		"name":     "Rahim Uddin",
		"email":    "rahim@customer.test",
		"password": "supersecret",
		"role":     "customer",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Wrong password is rejected without leaking which part was wrong.
	w = doRequest(t, r, http.MethodPost, "/login", "", gin.H{
		"email":    "rahim@customer.test",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodPost, "/login", "", gin.H{
		"email":    "rahim@customer.test",
		"password": "supersecret",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	token := data["token"].(string)
	assert.NotEmpty(t, token)

	w = doRequest(t, r, http.MethodGet, "/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, &scriptedGateway{})

	w := doRequest(t, r, http.MethodPost, "/register", "", gin.H{
		"name":     "Someone",
		"email":    "someone@mealbox.test",
		"password": "supersecret",
		"role":     "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
