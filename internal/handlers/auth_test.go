package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sternbridge/bullion-quotes/internal/models"
)

func TestStaffLogin(t *testing.T) {
	db := setupHandlerDB(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	if err := db.Create(&models.User{Email: "staff@example.com", Password: string(hash), Role: models.RoleStaff}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	h := NewAuthHandler(db)

	login := func(body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.Login(w, r)
		return w
	}

	if w := login(`{"email":"staff@example.com","password":"hunter2"}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	} else if len(w.Result().Cookies()) == 0 {
		t.Fatal("expected session cookie")
	}

	if w := login(`{"email":"","password":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank login expected 400 got %d", w.Code)
	}

	wrongPass := login(`{"email":"staff@example.com","password":"nope"}`)
	unknownUser := login(`{"email":"ghost@example.com","password":"hunter2"}`)
	if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPass.Code, unknownUser.Code)
	}
	if wrongPass.Body.String() != unknownUser.Body.String() {
		t.Fatal("login failure bodies must not distinguish unknown accounts")
	}
}
