package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sternbridge/bullion-quotes/internal/auth"
	"github.com/sternbridge/bullion-quotes/internal/models"
	"github.com/sternbridge/bullion-quotes/internal/quotes"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Setting{}, &models.Counter{}, &models.Quote{}, &models.QuoteItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

const createBody = `{
	"customer": {"first_name":"Ada","surname":"Byron","mobile":"07700900123","external_crm_id":"CRM-42"},
	"items": [
		{"name":"Krugerrand","metal_type":"gold","weight_grams":31.1035,"weight_label":"1 oz","quantity":1,"percent":10},
		{"name":"","metal_type":"gold","weight_grams":1,"quantity":1}
	],
	"gold_per_gram": 115.00,
	"silver_per_gram": 1.40
}`

func staffRequest(method, target, body, role string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	return r.WithContext(auth.WithStaff(r.Context(), 1, role))
}

func TestQuoteCreateAndGet(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewQuoteHandler(quotes.NewService(db, nil, ""))

	w := httptest.NewRecorder()
	h.Create(w, staffRequest(http.MethodPost, "/quotes", createBody, models.RoleStaff))
	if w.Code != http.StatusCreated {
		t.Fatalf("create expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	shortID, _ := created["short_id"].(string)
	if len(shortID) != 8 {
		t.Fatalf("short_id = %q", shortID)
	}
	if created["quote_number"] != "SBQ-000001" {
		t.Fatalf("quote_number = %v", created["quote_number"])
	}
	items, _ := created["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("blank item not filtered: %d items", len(items))
	}

	getW := httptest.NewRecorder()
	h.Get(getW, staffRequest(http.MethodGet, "/quotes/get?short_id="+shortID, "", models.RoleStaff))
	if getW.Code != http.StatusOK {
		t.Fatalf("get expected 200 got %d", getW.Code)
	}
}

func TestQuoteCreateResolvesDenominationWeight(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewQuoteHandler(quotes.NewService(db, nil, ""))

	// The submitted weight disagrees with the picker label; the stored
	// weight and the total must come from the label's gram constant.
	body := `{
		"customer": {"mobile":"07700900123"},
		"items": [{"name":"Krugerrand","metal_type":"gold","weight_grams":5,"weight_label":"1 oz","quantity":1}],
		"gold_per_gram": 115.00,
		"silver_per_gram": 1.40
	}`
	w := httptest.NewRecorder()
	h.Create(w, staffRequest(http.MethodPost, "/quotes", body, models.RoleStaff))
	if w.Code != http.StatusCreated {
		t.Fatalf("create expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "31.1035") {
		t.Fatalf("weight not resolved from label: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "3576.9") {
		t.Fatalf("total not computed from resolved weight: %s", w.Body.String())
	}
}

func TestQuoteCreateRequiresPositivePrices(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewQuoteHandler(quotes.NewService(db, nil, ""))

	w := httptest.NewRecorder()
	h.Create(w, staffRequest(http.MethodPost, "/quotes", `{"items":[],"gold_per_gram":0,"silver_per_gram":1.4}`, models.RoleStaff))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestQuoteProjectionFollowsRole(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewQuoteHandler(quotes.NewService(db, nil, ""))

	w := httptest.NewRecorder()
	h.Create(w, staffRequest(http.MethodPost, "/quotes", createBody, models.RoleStaff))
	if w.Code != http.StatusCreated {
		t.Fatalf("create got %d", w.Code)
	}
	// In-person staff never see PII on the wire.
	for _, leaked := range []string{"07700900123", "Byron", "CRM-42"} {
		if strings.Contains(w.Body.String(), leaked) {
			t.Fatalf("staff response leaks %q: %s", leaked, w.Body.String())
		}
	}
	var created map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	shortID := created["short_id"].(string)

	adminW := httptest.NewRecorder()
	h.Get(adminW, staffRequest(http.MethodGet, "/quotes/get?short_id="+shortID, "", models.RoleAdmin))
	if adminW.Code != http.StatusOK {
		t.Fatalf("admin get got %d", adminW.Code)
	}
	if !strings.Contains(adminW.Body.String(), "07700900123") || !strings.Contains(adminW.Body.String(), "CRM-42") {
		t.Fatalf("admin response missing customer detail: %s", adminW.Body.String())
	}
}

func TestQuoteListPaginates(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewQuoteHandler(quotes.NewService(db, nil, ""))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.Create(w, staffRequest(http.MethodPost, "/quotes", createBody, models.RoleStaff))
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d got %d", i, w.Code)
		}
	}
	w := httptest.NewRecorder()
	h.List(w, staffRequest(http.MethodGet, "/quotes?limit=2", "", models.RoleStaff))
	if w.Code != http.StatusOK {
		t.Fatalf("list got %d", w.Code)
	}
	var list struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
		Limit int               `json:"limit"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 3 || len(list.Items) != 2 || list.Limit != 2 {
		t.Fatalf("unexpected list: total=%d items=%d limit=%d", list.Total, len(list.Items), list.Limit)
	}
}

func TestQuoteExpireEndpoint(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewQuoteHandler(quotes.NewService(db, nil, ""))

	w := httptest.NewRecorder()
	h.Create(w, staffRequest(http.MethodPost, "/quotes", createBody, models.RoleStaff))
	var created map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	shortID := created["short_id"].(string)

	expW := httptest.NewRecorder()
	h.Expire(expW, staffRequest(http.MethodPost, "/quotes/expire?short_id="+shortID, "{}", models.RoleStaff))
	if expW.Code != http.StatusOK {
		t.Fatalf("expire got %d body=%s", expW.Code, expW.Body.String())
	}

	getW := httptest.NewRecorder()
	h.Get(getW, staffRequest(http.MethodGet, "/quotes/get?short_id="+shortID, "", models.RoleStaff))
	if !strings.Contains(getW.Body.String(), models.QuoteStatusExpired) {
		t.Fatalf("quote not expired: %s", getW.Body.String())
	}
}

func TestQuoteGetUnknownShortID(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewQuoteHandler(quotes.NewService(db, nil, ""))
	w := httptest.NewRecorder()
	h.Get(w, staffRequest(http.MethodGet, "/quotes/get?short_id=zzzzzzzz", "", models.RoleStaff))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
