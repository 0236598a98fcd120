package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clinica/internal/db"
	"clinica/internal/service"

	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Service *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")
	doctorID := 0
	if v := r.URL.Query().Get("doctor_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid doctor_id", http.StatusBadRequest)
			return
		}
		doctorID = id
	}

	appointments, err := h.Service.ListAppointments(date, doctorID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(appointments)
}

func (h *AdminHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	found, err := h.Service.SetAppointmentStatus(id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Status updated"})
}

func (h *AdminHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	found, err := h.Service.DeleteAppointment(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Appointment deleted"})
}

func (h *AdminHandler) ListSpecializations(w http.ResponseWriter, r *http.Request) {
	specs, err := h.Service.ListSpecializations()
	if err != nil {
		writeError(w, err)
		return
	}
	type specResponse struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		IsActive  bool   `json:"is_active"`
		SortOrder int    `json:"sort_order"`
	}
	resp := make([]specResponse, 0, len(specs))
	for _, s := range specs {
		resp = append(resp, specResponse{ID: s.ID, Name: s.Name, IsActive: s.IsActive, SortOrder: s.SortOrder})
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *AdminHandler) CreateSpecialization(w http.ResponseWriter, r *http.Request) {
	var req SpecializationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	spec, err := h.Service.CreateSpecialization(req.Name, req.SortOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"id": spec.ID, "name": spec.Name})
}

func (h *AdminHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.Service.ListDoctors()
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(doctorsToResponses(doctors))
}

func (h *AdminHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req DoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	doctor := doctorFromRequest(req)
	if err := h.Service.CreateDoctor(doctor); err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"id": doctor.ID, "message": "Doctor created"})
}

func (h *AdminHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req DoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	doctor := doctorFromRequest(req)
	doctor.ID = id
	found, err := h.Service.UpdateDoctor(doctor)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Doctor not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Doctor updated"})
}

func (h *AdminHandler) AddUnavailablePeriod(w http.ResponseWriter, r *http.Request) {
	doctorID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid doctor ID", http.StatusBadRequest)
		return
	}
	var req UnavailablePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	period, err := h.Service.AddUnavailablePeriod(doctorID, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"id": period.ID, "message": "Unavailable period added"})
}

func (h *AdminHandler) DeleteUnavailablePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	found, err := h.Service.DeleteUnavailablePeriod(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		http.Error(w, "Unavailable period not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Unavailable period deleted"})
}

func doctorFromRequest(req DoctorRequest) *db.Doctor {
	return &db.Doctor{
		SpecializationID: req.SpecializationID,
		LastName:         req.LastName,
		FirstName:        req.FirstName,
		MiddleName:       req.MiddleName,
		Cabinet:          req.Cabinet,
		Phone:            req.Phone,
		IsActive:         req.IsActive,
		WorkStart:        req.WorkStart,
		WorkEnd:          req.WorkEnd,
		SlotMinutes:      req.SlotMinutes,
		Mon:              req.Mon,
		Tue:              req.Tue,
		Wed:              req.Wed,
		Thu:              req.Thu,
		Fri:              req.Fri,
		Sat:              req.Sat,
		Sun:              req.Sun,
	}
}

func doctorsToResponses(doctors []db.Doctor) []DoctorAdminResponse {
	resp := make([]DoctorAdminResponse, 0, len(doctors))
	for _, d := range doctors {
		resp = append(resp, DoctorAdminResponse{
			ID: d.ID,
			DoctorRequest: DoctorRequest{
				SpecializationID: d.SpecializationID,
				LastName:         d.LastName,
				FirstName:        d.FirstName,
				MiddleName:       d.MiddleName,
				Cabinet:          d.Cabinet,
				Phone:            d.Phone,
				IsActive:         d.IsActive,
				WorkStart:        d.WorkStart,
				WorkEnd:          d.WorkEnd,
				SlotMinutes:      d.SlotMinutes,
				Mon:              d.Mon,
				Tue:              d.Tue,
				Wed:              d.Wed,
				Thu:              d.Thu,
				Fri:              d.Fri,
				Sat:              d.Sat,
				Sun:              d.Sun,
			},
		})
	}
	return resp
}
