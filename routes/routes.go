package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"nlas.ph/portal/handlers"
	"nlas.ph/portal/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/login/2fa", handlers.VerifyTwoFactorLogin).Methods("POST")
	r.HandleFunc("/quotes", handlers.RequestQuote).Methods("POST")
	r.Handle("/donations", middleware.OptionalJWT(
		http.HandlerFunc(handlers.CreateDonation))).Methods("POST")
	r.HandleFunc("/donations/{id}", handlers.GetDonation).Methods("GET")
	r.Handle("/payment-intent", middleware.OptionalJWT(
		http.HandlerFunc(handlers.NewPaymentIntentHandler().Create))).Methods("POST")
	r.HandleFunc("/webhooks/stripe", handlers.StripeWebhook).Methods("POST")
	r.HandleFunc("/services", handlers.ListServices).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handlers.GetCurrentUser).Methods("GET")
	api.HandleFunc("/profile/password", handlers.ChangePassword).Methods("PUT")
	api.HandleFunc("/profile/2fa/setup", handlers.Setup2FA).Methods("POST")
	api.HandleFunc("/profile/2fa/confirm", handlers.Confirm2FA).Methods("POST")
	api.HandleFunc("/profile/2fa/disable", handlers.Disable2FA).Methods("POST")

	// Client self-service
	api.HandleFunc("/applications", handlers.ListMyApplications).Methods("GET")
	api.HandleFunc("/payments", handlers.ListMyPayments).Methods("GET")
	api.HandleFunc("/payments/{id}", handlers.GetPayment).Methods("GET")
	api.HandleFunc("/payments/{id}/proof", handlers.SubmitPaymentProof).Methods("POST")
	api.HandleFunc("/payments/{id}/receipt", handlers.GetReceipt).Methods("GET")
	api.HandleFunc("/receipts", handlers.ListMyReceipts).Methods("GET")
	api.HandleFunc("/quotations", handlers.ListMyQuotations).Methods("GET")
	api.HandleFunc("/quotations/{id}", handlers.GetQuotation).Methods("GET")
	api.HandleFunc("/documents", handlers.ListMyDocuments).Methods("GET")
	api.HandleFunc("/documents", handlers.SubmitDocument).Methods("POST")
	api.HandleFunc("/documents/requirements", handlers.GetDocumentRequirements).Methods("GET")
	api.HandleFunc("/messages", handlers.ListMyMessages).Methods("GET")
	api.HandleFunc("/messages/unread", handlers.UnreadMessageCount).Methods("GET")
	api.HandleFunc("/messages/{id}/read", handlers.MarkMessageRead).Methods("POST")
	api.HandleFunc("/messages/{id}", handlers.DeleteMessage).Methods("DELETE")
	api.HandleFunc("/notifications", handlers.ListMyNotifications).Methods("GET")
	api.HandleFunc("/notifications/read-all", handlers.MarkAllNotificationsRead).Methods("POST")
	api.HandleFunc("/notifications/{id}/read", handlers.MarkNotificationRead).Methods("POST")
	api.HandleFunc("/ui-state", handlers.GetUIState).Methods("GET")
	api.HandleFunc("/ui-state/{key}", handlers.PutUIState).Methods("PUT")
	api.HandleFunc("/ui-state/{key}", handlers.PatchUIState).Methods("PATCH")
	api.HandleFunc("/files", handlers.UploadFileHandler).Methods("POST")

	// =====================================================
	// Admin Routes (require permissions)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	registerAdminRoutes(admin)

	// Realtime change stream for admin dashboards
	admin.Handle("/stream", middleware.RequirePermission("report:read")(
		http.HandlerFunc(handlers.StreamChanges))).Methods("GET")

	return r
}

type crudHandlers struct {
	getAll func(http.ResponseWriter, *http.Request)
	create func(http.ResponseWriter, *http.Request)
	getOne func(http.ResponseWriter, *http.Request)
	update func(http.ResponseWriter, *http.Request)
	delete func(http.ResponseWriter, *http.Request)
}

// registerCRUDRoutes registers standard CRUD routes for a resource
func registerCRUDRoutes(router *mux.Router, path string, resource string, h crudHandlers) {
	if h.getAll != nil {
		router.Handle(path, middleware.RequirePermission(resource+":read")(
			http.HandlerFunc(h.getAll))).Methods("GET")
	}
	if h.create != nil {
		router.Handle(path, middleware.RequirePermission(resource+":create")(
			http.HandlerFunc(h.create))).Methods("POST")
	}
	if h.getOne != nil {
		router.Handle(path+"/{id}", middleware.RequirePermission(resource+":read")(
			http.HandlerFunc(h.getOne))).Methods("GET")
	}
	if h.update != nil {
		router.Handle(path+"/{id}", middleware.RequirePermission(resource+":update")(
			http.HandlerFunc(h.update))).Methods("PUT")
	}
	if h.delete != nil {
		router.Handle(path+"/{id}", middleware.RequirePermission(resource+":delete")(
			http.HandlerFunc(h.delete))).Methods("DELETE")
	}
}

// registerAdminRoutes wires the permission-gated admin surface
func registerAdminRoutes(admin *mux.Router) {
	// Clients
	registerCRUDRoutes(admin, "/clients", "client", crudHandlers{
		getAll: handlers.ListClients,
		create: handlers.CreateClient,
		getOne: handlers.GetClient,
		update: handlers.UpdateClient,
		delete: handlers.DeleteClient,
	})
	admin.Handle("/applications", middleware.RequirePermission("client:update")(
		http.HandlerFunc(handlers.CreateApplication))).Methods("POST")
	admin.Handle("/applications/{id}/status", middleware.RequirePermission("client:update")(
		http.HandlerFunc(handlers.UpdateApplicationStatus))).Methods("PUT")

	// Payments
	registerCRUDRoutes(admin, "/payments", "payment", crudHandlers{
		getAll: handlers.ListPayments,
		create: handlers.CreatePayment,
		getOne: handlers.GetPayment,
		update: handlers.UpdatePayment,
		delete: handlers.DeletePayment,
	})
	admin.Handle("/payments/{id}/approve", middleware.RequirePermission("payment:approve")(
		http.HandlerFunc(handlers.ApprovePayment))).Methods("POST")
	admin.Handle("/payments/{id}/reject", middleware.RequirePermission("payment:approve")(
		http.HandlerFunc(handlers.RejectPayment))).Methods("POST")

	// Quotations
	registerCRUDRoutes(admin, "/quotations", "quotation", crudHandlers{
		getAll: handlers.ListQuotations,
		create: handlers.CreateQuotation,
		getOne: handlers.GetQuotation,
		update: handlers.UpdateQuotation,
		delete: handlers.DeleteQuotation,
	})

	// Service pricing
	registerCRUDRoutes(admin, "/services", "service", crudHandlers{
		getAll: handlers.ListServices,
		create: handlers.CreateService,
		getOne: handlers.GetService,
		update: handlers.UpdateService,
		delete: handlers.DeleteService,
	})

	// Documents
	admin.Handle("/documents", middleware.RequirePermission("document:read")(
		http.HandlerFunc(handlers.ListDocuments))).Methods("GET")
	admin.Handle("/documents/{id}/review", middleware.RequirePermission("document:verify")(
		http.HandlerFunc(handlers.ReviewDocument))).Methods("POST")
	admin.Handle("/document-requirements", middleware.RequirePermission("document:requirement")(
		http.HandlerFunc(handlers.CreateDocumentRequirement))).Methods("POST")
	admin.Handle("/document-requirements/{id}", middleware.RequirePermission("document:requirement")(
		http.HandlerFunc(handlers.UpdateDocumentRequirement))).Methods("PUT")
	admin.Handle("/document-requirements/{id}", middleware.RequirePermission("document:requirement")(
		http.HandlerFunc(handlers.DeleteDocumentRequirement))).Methods("DELETE")

	// Donations
	admin.Handle("/donations", middleware.RequirePermission("donation:read")(
		http.HandlerFunc(handlers.ListDonations))).Methods("GET")

	// Messaging
	admin.Handle("/messages", middleware.RequirePermission("message:send")(
		http.HandlerFunc(handlers.SendMessage))).Methods("POST")

	// Exports
	admin.Handle("/exports/payments", middleware.RequirePermission("report:export")(
		http.HandlerFunc(handlers.ExportPayments))).Methods("GET")
	admin.Handle("/exports/quotations", middleware.RequirePermission("report:export")(
		http.HandlerFunc(handlers.ExportQuotations))).Methods("GET")
	admin.Handle("/exports/donations", middleware.RequirePermission("report:export")(
		http.HandlerFunc(handlers.ExportDonations))).Methods("GET")
}
