package main

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func Routes() *mux.Router {
	r := mux.NewRouter()

	// ========================== Auth ==============================
	r.HandleFunc("/login", LoginHandler).Methods("POST")
	r.HandleFunc("/logout", LogoutHandler).Methods("POST")
	r.HandleFunc("/register", RegisterHandler).Methods("POST")
	r.HandleFunc("/refresh", RefreshTokenHandler).Methods("POST")

	// ========================== Shops ==============================
	r.HandleFunc("/shops", GetShops).Methods("GET")
	r.Handle("/shops", isAuthorized(hasRole(RoleShopOwner, CreateShop))).Methods("POST")
	r.Handle("/shop", isAuthorized(hasRole(RoleShopOwner, UpdateShop))).Methods("PUT")
	// Literal paths before the {shop} wildcard, mux matches in order
	r.Handle("/shop/verification", isAuthorized(hasRole(RoleShopOwner, UploadVerificationDocument))).Methods("POST")
	r.Handle("/shop/orders", isAuthorized(hasRole(RoleShopOwner, GetShopOrders))).Methods("GET")
	r.HandleFunc("/shop/{shop}", GetShop).Methods("GET")
	r.Handle("/shop/{shop}", isAuthorized(DeleteShop)).Methods("DELETE")
	r.HandleFunc("/shop/{shop}/feedbacks", GetShopFeedbacks).Methods("GET")

	// ========================== Admin approval ==============================
	r.Handle("/admin/shops", isAdmin(GetShopsForReview)).Methods("GET")
	r.Handle("/admin/shop/{shop}/approve", isAdmin(ApproveShop)).Methods("POST")
	r.Handle("/admin/shop/{shop}/reject", isAdmin(RejectShop)).Methods("POST")

	// ========================== Shoes ==============================
	r.HandleFunc("/shoes", GetShoes).Methods("GET")
	r.HandleFunc("/shoe/{shoe}", GetShoe).Methods("GET")
	r.HandleFunc("/shoe/{shoe}/feedbacks", GetShoeFeedbacks).Methods("GET")
	r.Handle("/shoes", isAuthorized(hasRole(RoleShopOwner, AddEditShoe))).Methods("POST")
	r.Handle("/shoe/{shoe}", isAuthorized(hasRole(RoleShopOwner, AddEditShoe))).Methods("PUT")
	r.Handle("/shoe/{shoe}", isAuthorized(hasRole(RoleShopOwner, DeleteShoe))).Methods("DELETE")

	// ========================== Cart ==============================
	r.Handle("/cart", isAuthorized(GetCart)).Methods("GET")
	r.Handle("/cart", isAuthorized(AddCartItem)).Methods("POST")
	r.Handle("/cart/{itemid}", isAuthorized(UpdateCartItem)).Methods("PUT")
	r.Handle("/cart/{itemid}", isAuthorized(RemoveCartItem)).Methods("DELETE")

	// ========================== Checkout & orders ==============================
	r.Handle("/shipping/quote", isAuthorized(GetShippingQuote)).Methods("POST")
	r.HandleFunc("/shipping/config", GetShippingConfig).Methods("GET")
	r.Handle("/shipping/config", isAdmin(UpdateShippingConfig)).Methods("PUT")
	r.Handle("/orders", isAuthorized(PlaceOrder)).Methods("POST")
	r.Handle("/orders", isAuthorized(GetOrders)).Methods("GET")
	r.Handle("/order/{order}/status", isAuthorized(AdvanceOrderStatus)).Methods("POST")
	r.Handle("/order/{order}/cancel", isAuthorized(CancelOrder)).Methods("POST")
	r.Handle("/production/queue", isAuthorized(hasRole(RoleShoemaker, GetProductionQueue))).Methods("GET")

	// ========================== Custom designs ==============================
	r.HandleFunc("/designs", GetDesignModels).Methods("GET")
	r.HandleFunc("/design/{design}", GetDesignModel).Methods("GET")
	r.Handle("/designs", isAdmin(CreateDesignModel)).Methods("POST")
	r.Handle("/design/{design}", isAdmin(UpdateDesignModel)).Methods("PUT")
	r.Handle("/design/{design}", isAdmin(DeleteDesignModel)).Methods("DELETE")
	r.Handle("/design-orders", isAuthorized(PlaceDesignOrder)).Methods("POST")
	r.Handle("/design-orders", isAuthorized(GetDesignOrders)).Methods("GET")

	// ========================== Feedback ==============================
	r.Handle("/feedbacks", isAuthorized(CreateFeedback)).Methods("POST")

	return r
}

func (a *app) Run() {
	c := cors.New(cors.Options{
		AllowedOrigins:     []string{"http://localhost:3000", os.Getenv("API_URL")},
		AllowCredentials:   true,
		AllowedMethods:     []string{"GET", "HEAD", "POST", "PUT", "OPTIONS", "DELETE"},
		OptionsPassthrough: true,
		ExposedHeaders:     []string{"Set-Cookie"},
	})

	handler := c.Handler(handlers.CombinedLoggingHandler(os.Stdout, a.Router))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	a.Log.Infow("server listening", "port", port)
	http.ListenAndServe(":"+port, handler)
}
