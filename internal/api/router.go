package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered under /api.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	listingsHandler := &ListingsHandler{DB: db}
	favoritesHandler := &FavoritesHandler{DB: db}
	offersHandler := &OffersHandler{DB: db}
	messagesHandler := &MessagesHandler{DB: db}
	supportHandler := &SupportHandler{DB: db}
	aiHandler := &AIHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret)
	protected := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/categories", listingsHandler.Categories)
	mux.HandleFunc("GET /api/listings", listingsHandler.List)
	mux.HandleFunc("GET /api/listings/{id}", listingsHandler.Get)
	mux.HandleFunc("POST /api/ai/generate-description", aiHandler.GenerateDescription)
	mux.HandleFunc("POST /api/ai/suggest-price", aiHandler.SuggestPrice)

	// Profile.
	mux.Handle("GET /api/auth/profile", protected(authHandler.Profile))
	mux.Handle("PUT /api/users/profile", protected(usersHandler.UpdateProfile))

	// Listings.
	mux.Handle("GET /api/listings/my", protected(listingsHandler.Mine))
	mux.Handle("POST /api/listings", protected(listingsHandler.Create))
	mux.Handle("DELETE /api/listings/{id}", protected(listingsHandler.Delete))

	// Favorites.
	mux.Handle("GET /api/favorites", protected(favoritesHandler.List))
	mux.Handle("POST /api/favorites/{id}", protected(favoritesHandler.Add))
	mux.Handle("DELETE /api/favorites/{id}", protected(favoritesHandler.Remove))
	mux.Handle("GET /api/favorites/check/{id}", protected(favoritesHandler.Check))

	// Offers.
	mux.Handle("POST /api/offers", protected(offersHandler.Create))
	mux.Handle("GET /api/offers/my", protected(offersHandler.Received))
	mux.Handle("POST /api/offers/{id}/{action}", protected(offersHandler.Act))

	// Messages.
	mux.Handle("POST /api/messages", protected(messagesHandler.Send))
	mux.Handle("GET /api/messages/conversations", protected(messagesHandler.Conversations))
	mux.Handle("GET /api/messages/unread-count", protected(messagesHandler.UnreadCount))
	mux.Handle("GET /api/messages/{listingId}/{otherUserId}", protected(messagesHandler.Thread))
	mux.Handle("POST /api/messages/mark-read/{listingId}/{otherUserId}", protected(messagesHandler.MarkRead))

	// Support.
	mux.Handle("POST /api/support", protected(supportHandler.Create))
	mux.Handle("GET /api/support/my", protected(supportHandler.Mine))

	return mux
}
