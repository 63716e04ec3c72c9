package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sternbridge/bullion-quotes/internal/auth"
	"github.com/sternbridge/bullion-quotes/internal/httpx"
	"github.com/sternbridge/bullion-quotes/internal/models"
	"github.com/sternbridge/bullion-quotes/internal/validation"
)

// AuthHandler signs staff in and out. Customers never log in here; their
// access runs through the quote credential gate.
type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

// Login: POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var user models.User
	if err := h.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same response as a wrong password: no account enumeration.
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateStaffSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{"email": user.Email, "name": user.Name, "role": user.Role})
}

// Logout: POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearStaffSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
