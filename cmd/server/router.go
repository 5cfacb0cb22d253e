package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pawtrol/pawtrol-api/internal/api"
	apiMiddleware "github.com/pawtrol/pawtrol-api/internal/api/middleware"
	"github.com/pawtrol/pawtrol-api/internal/service/auth"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	bookingHandler := api.NewBookingHandler(app.ledgerService, app.dispatchService, app.logger)
	offerHandler := api.NewOfferHandler(app.dispatchService, app.logger)
	handshakeHandler := api.NewHandshakeHandler(app.handshakeService, app.logger)
	relayHandler := api.NewRelayHandler(app.relayService, app.logger)
	paymentHandler := api.NewPaymentHandler(app.paymentsService, app.logger)
	safetyHandler := api.NewSafetyHandler(app.safetyService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Trip share view (public): the token is the credential
		r.Get("/share/{token}", safetyHandler.ResolveShareToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Booking ledger endpoints
			r.Post("/bookings", bookingHandler.CreateBooking)
			r.Get("/bookings", bookingHandler.ListBookings)
			r.Get("/bookings/{id}", bookingHandler.GetBooking)
			r.Post("/bookings/{id}/cancel", bookingHandler.CancelBooking)
			r.Post("/bookings/{id}/complete", bookingHandler.CompleteBooking)
			r.Post("/bookings/{id}/dispatch", bookingHandler.DispatchBooking)

			// Provider inbox endpoints
			r.Get("/inbox", offerHandler.ListInbox)
			r.Post("/offers/{id}/respond", offerHandler.RespondToOffer)

			// Trust handshake endpoints
			r.Post("/bookings/{id}/pin", handshakeHandler.GeneratePIN)
			r.Post("/bookings/{id}/pin/verify", handshakeHandler.VerifyPIN)

			// Location relay endpoints
			r.Post("/bookings/{id}/location", relayHandler.ReportLocation)
			r.Get("/bookings/{id}/location", relayHandler.GetLocation)

			// Payment endpoints
			r.Post("/bookings/{id}/payments", paymentHandler.SubmitManualProof)
			r.Post("/bookings/{id}/payments/gateway", paymentHandler.ConfirmGatewayPayment)
			r.Get("/bookings/{id}/payments", paymentHandler.ListPayments)

			// Safety endpoints
			r.Post("/contacts", safetyHandler.AddContact)
			r.Get("/contacts", safetyHandler.ListContacts)
			r.Delete("/contacts/{id}", safetyHandler.RemoveContact)
			r.Post("/bookings/{id}/share", safetyHandler.ShareTrip)
			r.Post("/bookings/{id}/sos", safetyHandler.TriggerSOS)

			// Operator-only payment review
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireRole(auth.RoleAdmin))
				r.Post("/payments/{id}/review", paymentHandler.ReviewPayment)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
