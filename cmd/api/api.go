package api

import (
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/recipemania/recipe-mania-server/service/availability"
	"github.com/recipemania/recipe-mania-server/service/booking"
	"github.com/recipemania/recipe-mania-server/service/chat"
	"github.com/recipemania/recipe-mania-server/service/chef"
	"github.com/recipemania/recipe-mania-server/service/dashboard"
	"github.com/recipemania/recipe-mania-server/service/payment"
	"github.com/recipemania/recipe-mania-server/service/recipe"
	"github.com/recipemania/recipe-mania-server/service/review"
	"github.com/recipemania/recipe-mania-server/service/user"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	recipeHandler := recipe.NewRecipeHandler(s.db)
	recipeHandler.RegisterRoutes(subrouter)

	reviewHandler := review.NewReviewHandler(s.db)
	reviewHandler.RegisterRoutes(subrouter)

	chefHandler := chef.NewChefHandler(s.db)
	chefHandler.RegisterRoutes(subrouter)

	availabilityHandler := availability.NewAvailabilityHandler(s.db)
	availabilityHandler.RegisterRoutes(subrouter)

	bookingHandler := booking.NewBookingHandler(s.db)
	bookingHandler.RegisterRoutes(subrouter)

	paymentHandler := payment.NewPaymentHandler(s.db)
	paymentHandler.RegisterRoutes(subrouter)

	dashboardHandler := dashboard.NewDashboardHandler(s.db)
	dashboardHandler.RegisterRoutes(subrouter)

	chatHandler := chat.NewChatHandler(s.db)
	chatHandler.RegisterRoutes(subrouter)

	fileServer := http.FileServer(http.Dir("uploads/profiles"))
	router.PathPrefix("/profiles/").Handler(http.StripPrefix("/profiles/", fileServer))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Timezone"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(router))
}
