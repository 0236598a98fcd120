package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"

	"clinica/internal/api"
	"clinica/internal/auth"
	"clinica/internal/repository"
	"clinica/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	horizonDays := 20
	if v := os.Getenv("BOOKING_HORIZON_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			horizonDays = parsed
		} else {
			log.Printf("Ignoring invalid BOOKING_HORIZON_DAYS %q", v)
		}
	}

	doctorRepo := repository.NewDoctorRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)
	jobRepo := repository.NewJobRepository(db)

	sender := service.NewSenderService()
	bookingSvc := service.NewBookingService(doctorRepo, appointmentRepo, patientRepo, sender, horizonDays)
	adminSvc := service.NewAdminService(adminRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)
	jobSvc := service.NewJobService(jobRepo, sender)

	bookingHandler := api.NewBookingHandler(bookingSvc)
	adminHandler := api.NewAdminHandler(adminSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/specializations", bookingHandler.ListSpecializations).Methods("GET")
	r.HandleFunc("/api/specializations/{id}/doctors", bookingHandler.ListDoctors).Methods("GET")
	r.HandleFunc("/api/doctors/{id}/dates", bookingHandler.AvailableDates).Methods("GET")
	r.HandleFunc("/api/doctors/{id}/slots", bookingHandler.FreeSlots).Methods("GET")
	r.HandleFunc("/api/appointments", bookingHandler.BookAppointment).Methods("POST")
	r.HandleFunc("/api/appointments/{code}", bookingHandler.CancelAppointment).Methods("DELETE")
	r.HandleFunc("/api/appointments", bookingHandler.CancelAppointmentBySlot).Methods("DELETE")
	r.HandleFunc("/api/patients", bookingHandler.RegisterPatient).Methods("POST")
	r.HandleFunc("/api/patients/{telegram_id}", bookingHandler.GetProfile).Methods("GET")
	r.HandleFunc("/api/patients/{telegram_id}/appointments", bookingHandler.MyAppointments).Methods("GET")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/appointments", adminHandler.ListAppointments).Methods("GET")
	admin.HandleFunc("/appointments/{id}/status", adminHandler.UpdateAppointmentStatus).Methods("PUT")
	admin.HandleFunc("/appointments/{id}", adminHandler.DeleteAppointment).Methods("DELETE")
	admin.HandleFunc("/specializations", adminHandler.ListSpecializations).Methods("GET")
	admin.HandleFunc("/specializations", adminHandler.CreateSpecialization).Methods("POST")
	admin.HandleFunc("/doctors", adminHandler.ListDoctors).Methods("GET")
	admin.HandleFunc("/doctors", adminHandler.CreateDoctor).Methods("POST")
	admin.HandleFunc("/doctors/{id}", adminHandler.UpdateDoctor).Methods("PUT")
	admin.HandleFunc("/doctors/{id}/unavailable", adminHandler.AddUnavailablePeriod).Methods("POST")
	admin.HandleFunc("/unavailable/{id}", adminHandler.DeleteUnavailablePeriod).Methods("DELETE")

	c := cron.New()
	if _, err := c.AddFunc("*/10 * * * *", func() {
		if err := jobSvc.CompletePastAppointments(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule completion sweep: %v", err)
	}
	if _, err := c.AddFunc("0 18 * * *", func() {
		if err := jobSvc.SendTomorrowReminders(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule reminder sweep: %v", err)
	}
	// No matching Stop: log.Fatal below exits without running defers,
	// and the scheduler lives for the life of the process anyway.
	c.Start()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, corsHandler(r))))
}
