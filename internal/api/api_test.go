package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chancenmarket/chancen/internal/db"
	"github.com/chancenmarket/chancen/internal/model"
)

const testJWTSecret = "test-secret"

const testPassword = "Passwort123"

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database, testJWTSecret))
	t.Cleanup(server.Close)
	return server
}

// doJSON sends body as JSON and decodes the response into out when non-nil.
func doJSON(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

// register creates an account and returns its user and token.
func register(t *testing.T, server *httptest.Server, name string) (model.User, string) {
	t.Helper()
	var resp model.AuthResponse
	status := doJSON(t, "POST", server.URL+"/api/auth/register", "", map[string]string{
		"name": name, "email": name + "@example.com", "password": testPassword,
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("register %s: expected 200, got %d", name, status)
	}
	if resp.Token == "" {
		t.Fatalf("register %s: empty token", name)
	}
	return resp.User, resp.Token
}

func createListing(t *testing.T, server *httptest.Server, token, title string, price float64) model.Listing {
	t.Helper()
	var l model.Listing
	status := doJSON(t, "POST", server.URL+"/api/listings", token, model.ListingDraft{
		Title: title, Description: "Gut erhalten", Price: price, Category: "electronics",
		Images: []string{"data:image/jpeg;base64,AAAA"},
	}, &l)
	if status != http.StatusOK {
		t.Fatalf("create listing: expected 200, got %d", status)
	}
	return l
}

func TestRegisterAndLogin(t *testing.T) {
	server := setupTestServer(t)
	user, _ := register(t, server, "anna")
	if user.Role != model.RoleUser {
		t.Errorf("expected role user, got %q", user.Role)
	}

	tests := []struct {
		name   string
		path   string
		body   map[string]string
		status int
	}{
		{"duplicate email", "/api/auth/register", map[string]string{"name": "A", "email": "ANNA@example.com", "password": testPassword}, http.StatusBadRequest},
		{"weak password", "/api/auth/register", map[string]string{"name": "B", "email": "b@example.com", "password": "password"}, http.StatusBadRequest},
		{"missing name", "/api/auth/register", map[string]string{"email": "c@example.com", "password": testPassword}, http.StatusBadRequest},
		{"wrong password", "/api/auth/login", map[string]string{"email": "anna@example.com", "password": "Falsch123"}, http.StatusUnauthorized},
		{"unknown user", "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": testPassword}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			status := doJSON(t, "POST", server.URL+tt.path, "", tt.body, &body)
			if status != tt.status {
				t.Errorf("expected %d, got %d", tt.status, status)
			}
			if body["detail"] == "" {
				t.Error("expected detail in error body")
			}
		})
	}

	var login model.AuthResponse
	status := doJSON(t, "POST", server.URL+"/api/auth/login", "", map[string]string{
		"email": "anna@example.com", "password": testPassword,
	}, &login)
	if status != http.StatusOK || login.User.ID != user.ID {
		t.Fatalf("login: status %d, user %q", status, login.User.ID)
	}

	var profile model.User
	if status := doJSON(t, "GET", server.URL+"/api/auth/profile", login.Token, nil, &profile); status != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", status)
	}
	if profile.Email != "anna@example.com" {
		t.Errorf("expected profile email, got %q", profile.Email)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := setupTestServer(t)

	for _, path := range []string{"/api/favorites", "/api/offers/my", "/api/messages/unread-count", "/api/listings/my"} {
		if status := doJSON(t, "GET", server.URL+path, "", nil, nil); status != http.StatusUnauthorized {
			t.Errorf("GET %s: expected 401, got %d", path, status)
		}
	}
	if status := doJSON(t, "GET", server.URL+"/api/favorites", "garbage", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", status)
	}
}

func TestUpdateProfile(t *testing.T) {
	server := setupTestServer(t)
	_, token := register(t, server, "paul")

	var user model.User
	status := doJSON(t, "PUT", server.URL+"/api/users/profile", token, map[string]any{
		"name": "Paul M.", "phone_enabled": true,
	}, &user)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if user.Name != "Paul M." || !user.PhoneEnabled {
		t.Errorf("profile not updated: %+v", user)
	}

	if status := doJSON(t, "PUT", server.URL+"/api/users/profile", token, map[string]any{"name": " "}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for blank name, got %d", status)
	}
}

func TestListingsAPIFlow(t *testing.T) {
	server := setupTestServer(t)
	_, sellerToken := register(t, server, "seller")
	_, otherToken := register(t, server, "other")

	first := createListing(t, server, sellerToken, "iPhone 12", 400)
	createListing(t, server, sellerToken, "Samsung TV", 300)

	var listings []model.Listing
	doJSON(t, "GET", server.URL+"/api/listings?category=electronics&limit=1", "", nil, &listings)
	if len(listings) != 1 || listings[0].Title != "Samsung TV" {
		t.Errorf("expected newest listing only, got %v", listings)
	}

	doJSON(t, "GET", server.URL+"/api/listings?search=iphone", "", nil, &listings)
	if len(listings) != 1 || listings[0].ID != first.ID {
		t.Errorf("expected search hit, got %v", listings)
	}

	if status := doJSON(t, "GET", server.URL+"/api/listings?limit=abc", "", nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", status)
	}

	var got model.Listing
	doJSON(t, "GET", server.URL+"/api/listings/"+first.ID, "", nil, nil)
	doJSON(t, "GET", server.URL+"/api/listings/"+first.ID, "", nil, &got)
	if got.Views != 1 {
		t.Errorf("expected 1 prior view, got %d", got.Views)
	}

	var mine []model.Listing
	doJSON(t, "GET", server.URL+"/api/listings/my", sellerToken, nil, &mine)
	if len(mine) != 2 {
		t.Errorf("expected 2 own listings, got %d", len(mine))
	}

	if status := doJSON(t, "DELETE", server.URL+"/api/listings/"+first.ID, otherToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for foreign delete, got %d", status)
	}
	if status := doJSON(t, "DELETE", server.URL+"/api/listings/"+first.ID, sellerToken, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 for own delete, got %d", status)
	}
	if status := doJSON(t, "GET", server.URL+"/api/listings/"+first.ID, "", nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestCreateListingValidation(t *testing.T) {
	server := setupTestServer(t)
	_, token := register(t, server, "seller")

	status := doJSON(t, "POST", server.URL+"/api/listings", token, model.ListingDraft{
		Title: "X", Description: "Y", Price: 1, Category: "spaceships",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown category, got %d", status)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	server := setupTestServer(t)

	var categories []model.Category
	if status := doJSON(t, "GET", server.URL+"/api/categories", "", nil, &categories); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(categories) != len(model.Categories()) {
		t.Errorf("expected %d categories, got %d", len(model.Categories()), len(categories))
	}
}

func TestFavoritesAPIFlow(t *testing.T) {
	server := setupTestServer(t)
	_, sellerToken := register(t, server, "seller")
	_, buyerToken := register(t, server, "buyer")
	l := createListing(t, server, sellerToken, "Kamera", 250)

	url := server.URL + "/api/favorites/" + l.ID
	if status := doJSON(t, "POST", url, buyerToken, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 on add, got %d", status)
	}
	if status := doJSON(t, "POST", url, buyerToken, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 on duplicate add, got %d", status)
	}

	var check model.FavoriteCheck
	doJSON(t, "GET", server.URL+"/api/favorites/check/"+l.ID, buyerToken, nil, &check)
	if !check.IsFavorited {
		t.Error("expected is_favorited true")
	}

	var favs []model.Listing
	doJSON(t, "GET", server.URL+"/api/favorites", buyerToken, nil, &favs)
	if len(favs) != 1 {
		t.Errorf("expected 1 favorite, got %d", len(favs))
	}

	if status := doJSON(t, "DELETE", url, buyerToken, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 on remove, got %d", status)
	}
	if status := doJSON(t, "DELETE", url, buyerToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 on missing remove, got %d", status)
	}
}

func TestOffersAPIFlow(t *testing.T) {
	server := setupTestServer(t)
	seller, sellerToken := register(t, server, "seller")
	buyer, buyerToken := register(t, server, "buyer")
	l := createListing(t, server, sellerToken, "Fahrrad", 200)

	if status := doJSON(t, "POST", server.URL+"/api/offers", sellerToken, model.CreateOfferRequest{
		ListingID: l.ID, SellerID: seller.ID, OfferedPrice: 150,
	}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for offer on own listing, got %d", status)
	}

	var offer model.Offer
	status := doJSON(t, "POST", server.URL+"/api/offers", buyerToken, model.CreateOfferRequest{
		ListingID: l.ID, SellerID: seller.ID, OfferedPrice: 170, Message: "Heute abholbar?",
	}, &offer)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var received []model.Offer
	doJSON(t, "GET", server.URL+"/api/offers/my", sellerToken, nil, &received)
	if len(received) != 1 || received[0].OriginalPrice != 200 || received[0].BuyerName != "buyer" {
		t.Fatalf("unexpected received offers: %+v", received)
	}

	if status := doJSON(t, "POST", server.URL+"/api/offers/"+offer.ID+"/accept", buyerToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for buyer accepting, got %d", status)
	}
	if status := doJSON(t, "POST", server.URL+"/api/offers/"+offer.ID+"/maybe", sellerToken, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 for unknown action, got %d", status)
	}

	var updated model.Offer
	doJSON(t, "POST", server.URL+"/api/offers/"+offer.ID+"/reject", sellerToken, nil, &updated)
	if updated.Status != model.OfferStatusRejected {
		t.Errorf("expected rejected, got %q", updated.Status)
	}

	var thread []model.Message
	doJSON(t, "GET", server.URL+"/api/messages/"+l.ID+"/"+seller.ID, buyerToken, nil, &thread)
	if len(thread) != 2 {
		t.Fatalf("expected offer and verdict messages, got %d", len(thread))
	}
	if thread[0].FromUserID != buyer.ID || !strings.HasPrefix(thread[1].Content, "Your offer was rejected") {
		t.Errorf("unexpected automatic messages: %+v", thread)
	}
}

func TestMessagesAPIFlow(t *testing.T) {
	server := setupTestServer(t)
	seller, sellerToken := register(t, server, "seller")
	buyer, buyerToken := register(t, server, "buyer")
	l := createListing(t, server, sellerToken, "Sofa", 90)

	for _, text := range []string{"Hallo", "Ist das Sofa noch da?"} {
		status := doJSON(t, "POST", server.URL+"/api/messages", buyerToken, model.SendMessageRequest{
			ToUserID: seller.ID, ListingID: l.ID, Content: text, MessageType: model.MessageTypeText,
		}, nil)
		if status != http.StatusOK {
			t.Fatalf("send: expected 200, got %d", status)
		}
	}

	if status := doJSON(t, "POST", server.URL+"/api/messages", buyerToken, model.SendMessageRequest{
		ToUserID: seller.ID, ListingID: l.ID,
	}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for empty message, got %d", status)
	}
	if status := doJSON(t, "POST", server.URL+"/api/messages", buyerToken, model.SendMessageRequest{
		ToUserID: seller.ID, ListingID: l.ID, MessageType: model.MessageTypeImage,
		Images: []string{"1", "2", "3", "4", "5", "6"},
	}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for six images, got %d", status)
	}

	var unread model.UnreadCount
	doJSON(t, "GET", server.URL+"/api/messages/unread-count", sellerToken, nil, &unread)
	if unread.Count != 2 {
		t.Errorf("expected 2 unread, got %d", unread.Count)
	}

	var convs []model.Conversation
	doJSON(t, "GET", server.URL+"/api/messages/conversations", sellerToken, nil, &convs)
	if len(convs) != 1 || convs[0].OtherUserID != buyer.ID || convs[0].UnreadCount != 2 {
		t.Fatalf("unexpected conversations: %+v", convs)
	}

	var marked map[string]int64
	doJSON(t, "POST", server.URL+"/api/messages/mark-read/"+l.ID+"/"+buyer.ID, sellerToken, nil, &marked)
	if marked["marked"] != 2 {
		t.Errorf("expected 2 marked, got %d", marked["marked"])
	}
	doJSON(t, "GET", server.URL+"/api/messages/unread-count", sellerToken, nil, &unread)
	if unread.Count != 0 {
		t.Errorf("expected 0 unread after mark-read, got %d", unread.Count)
	}

	var thread []model.Message
	doJSON(t, "GET", server.URL+"/api/messages/"+l.ID+"/"+buyer.ID, sellerToken, nil, &thread)
	if len(thread) != 2 || thread[0].Content != "Hallo" {
		t.Errorf("expected thread oldest first, got %+v", thread)
	}

	var empty []model.Message
	if status := doJSON(t, "GET", server.URL+"/api/messages/nope/"+buyer.ID, sellerToken, nil, &empty); status != http.StatusOK || len(empty) != 0 {
		t.Errorf("expected empty thread, got status %d with %d messages", status, len(empty))
	}
}

func TestSupportAPI(t *testing.T) {
	server := setupTestServer(t)
	_, token := register(t, server, "user")

	if status := doJSON(t, "POST", server.URL+"/api/support", token, model.SupportRequest{Subject: "Hilfe"}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 without message, got %d", status)
	}

	var ticket model.SupportTicket
	doJSON(t, "POST", server.URL+"/api/support", token, model.SupportRequest{Subject: "Hilfe", Message: "Bitte melden"}, &ticket)
	if ticket.Status != model.SupportStatusOpen {
		t.Errorf("expected open ticket, got %q", ticket.Status)
	}

	var tickets []model.SupportTicket
	doJSON(t, "GET", server.URL+"/api/support/my", token, nil, &tickets)
	if len(tickets) != 1 {
		t.Errorf("expected 1 ticket, got %d", len(tickets))
	}
}

func TestAIEndpoints(t *testing.T) {
	server := setupTestServer(t)
	_, token := register(t, server, "seller")

	var price model.PriceResponse
	doJSON(t, "POST", server.URL+"/api/ai/suggest-price", "", model.PriceRequest{Title: "TV", Category: "electronics"}, &price)
	if price.SuggestedPrice != unknownPrice {
		t.Errorf("expected unknown price with no listings, got %q", price.SuggestedPrice)
	}

	createListing(t, server, token, "TV A", 100)
	createListing(t, server, token, "TV B", 200)
	createListing(t, server, token, "TV C", 900)

	doJSON(t, "POST", server.URL+"/api/ai/suggest-price", "", model.PriceRequest{Title: "TV", Category: "electronics"}, &price)
	if price.SuggestedPrice != "Angemessener Preis: €180-220" {
		t.Errorf("unexpected suggestion %q", price.SuggestedPrice)
	}

	var desc model.DescriptionResponse
	status := doJSON(t, "POST", server.URL+"/api/ai/generate-description", "", model.DescriptionRequest{
		Title: "Golf", Category: "cars", CategoryFields: map[string]any{"brand": "Volkswagen"},
	}, &desc)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.HasPrefix(desc.Description, "Golf in der Kategorie Autos.") || !strings.Contains(desc.Description, "Marke: Volkswagen") {
		t.Errorf("unexpected description %q", desc.Description)
	}

	if status := doJSON(t, "POST", server.URL+"/api/ai/generate-description", "", model.DescriptionRequest{Category: "cars"}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 without title, got %d", status)
	}
}

func TestPriceRange(t *testing.T) {
	tests := []struct {
		prices []float64
		want   string
	}{
		{nil, unknownPrice},
		{[]float64{100}, "Angemessener Preis: €90-110"},
		{[]float64{100, 300}, "Angemessener Preis: €180-220"},
	}
	for _, tt := range tests {
		if got := priceRange(tt.prices); got != tt.want {
			t.Errorf("priceRange(%v) = %q, want %q", tt.prices, got, tt.want)
		}
	}
}
