package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	api := s.router.Group("/api")

	// KYC users and the payment-gated verification endpoint
	api.GET("/kyc/users", s.listUsers)
	api.POST("/kyc/users", s.createUser)
	api.GET("/kyc/users/:id", s.getUser)
	api.PATCH("/kyc/users/:id/status", s.updateUserStatus)
	api.POST("/kyc/verify", s.verify)

	// Payment transactions
	api.GET("/payments", s.listPayments)
	api.POST("/payments", s.createPayment)
	api.GET("/payments/:id", s.getPayment)
	api.PATCH("/payments/:id/status", s.updatePaymentStatus)

	// Credentials
	api.GET("/credentials", s.listCredentials)
	api.POST("/credentials", s.createCredential)

	// Offline devices, mesh ledger, settlement
	api.GET("/offline/devices", s.listDevices)
	api.POST("/offline/devices", s.createDevice)
	api.GET("/offline/devices/:deviceId", s.getDevice)
	api.GET("/offline/transactions", s.listMeshTransactions)
	api.POST("/offline/transactions", s.createMeshTransaction)
	api.GET("/offline/batches", s.listBatches)
	api.POST("/offline/settle", s.settle)

	// Biometric profiles
	api.GET("/biometrics", s.listBiometricProfiles)
	api.POST("/biometrics", s.createBiometricProfile)

	// Verification logs
	api.GET("/logs", s.listLogs)
	api.POST("/logs", s.createLog)

	// Dashboard aggregation
	api.GET("/dashboard/stats", s.dashboardStats)
}
