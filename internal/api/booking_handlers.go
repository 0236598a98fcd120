package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clinica/internal/entities"
	"clinica/internal/service"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) ListSpecializations(w http.ResponseWriter, r *http.Request) {
	specs, err := h.Service.Specializations()
	if err != nil {
		writeError(w, err)
		return
	}
	if specs == nil {
		specs = []entities.SpecializationResponse{}
	}
	json.NewEncoder(w).Encode(specs)
}

func (h *BookingHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	specializationID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid specialization ID", http.StatusBadRequest)
		return
	}
	doctors, err := h.Service.DoctorsBySpecialization(specializationID)
	if err != nil {
		writeError(w, err)
		return
	}
	if doctors == nil {
		doctors = []entities.DoctorResponse{}
	}
	json.NewEncoder(w).Encode(doctors)
}

func (h *BookingHandler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	doctorID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
		return
	}
	dates, err := h.Service.AvailableDates(doctorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"doctor_id": doctorID,
		"dates":     dates,
	})
}

func (h *BookingHandler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "Missing date parameter", http.StatusBadRequest)
		return
	}
	slots, err := h.Service.FreeSlots(doctorID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	if slots == nil {
		slots = []entities.Slot{}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"doctor_id": doctorID,
		"date":      date,
		"slots":     slots,
	})
}

func (h *BookingHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	appt, err := h.Service.Book(req)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(BookAppointmentResponse{
		Code:    appt.Code,
		Message: "Appointment confirmed.",
	})
}

func (h *BookingHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	found, err := h.Service.CancelByCode(code, req.TelegramID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Appointment cancelled"})
}

// CancelAppointmentBySlot cancels by (patient, doctor, date, time) for
// callers that never stored the appointment code.
func (h *BookingHandler) CancelAppointmentBySlot(w http.ResponseWriter, r *http.Request) {
	var req CancelSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	found, err := h.Service.CancelBySlot(req.TelegramID, req.DoctorID, req.Date, req.Time)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Appointment cancelled"})
}

func (h *BookingHandler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(mux.Vars(r)["telegram_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid telegram ID", http.StatusBadRequest)
		return
	}
	appointments, err := h.Service.MyAppointments(telegramID)
	if err != nil {
		writeError(w, err)
		return
	}
	if appointments == nil {
		appointments = []entities.AppointmentSummary{}
	}
	json.NewEncoder(w).Encode(appointments)
}

func (h *BookingHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	profile, err := h.Service.RegisterPatient(req)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(profile)
}

func (h *BookingHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(mux.Vars(r)["telegram_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid telegram ID", http.StatusBadRequest)
		return
	}
	profile, err := h.Service.Profile(telegramID)
	if err != nil {
		writeError(w, err)
		return
	}
	if profile == nil {
		http.Error(w, "Patient not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(profile)
}
