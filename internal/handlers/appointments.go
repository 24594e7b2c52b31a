package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"salonbook/internal/booking"
	"salonbook/internal/model"
	"salonbook/libs/httpx"
)

type AppointmentHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewAppointmentHandler(svc *booking.Service, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, logger: logger}
}

func (h *AppointmentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/appointments/find-available-slots", h.FindAvailableSlots)
	mux.HandleFunc("POST /api/appointments", h.Create)
	mux.HandleFunc("GET /api/appointments/my", h.My)
	mux.HandleFunc("GET /api/appointments/calendar", h.Calendar)
	mux.HandleFunc("GET /api/appointments/{id}", h.Get)
	mux.HandleFunc("PUT /api/appointments/{id}", h.Update)
	mux.HandleFunc("PUT /api/appointments/{id}/cancel", h.Cancel)
}

type findSlotsRequest struct {
	ServiceIDs       []string `json:"serviceIds"`
	PreferredStaffID string   `json:"preferredStaffId"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
}

type slotItem struct {
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	StaffID     string `json:"staffId"`
	StaffName   string `json:"staffName"`
	IsAvailable bool   `json:"isAvailable"`
}

type findSlotsResponse struct {
	SearchDate             string     `json:"searchDate"`
	TotalDurationInMinutes int        `json:"totalDurationInMinutes"`
	AvailableSlots         []slotItem `json:"availableSlots"`
}

func (h *AppointmentHandler) FindAvailableSlots(w http.ResponseWriter, r *http.Request) {
	var req findSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	from, err := parseRFC3339(req.StartDate)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	to, err := parseRFC3339(req.EndDate)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid endDate")
		return
	}

	result, err := h.svc.FindAvailableSlots(r.Context(), booking.SlotQuery{
		ServiceIDs:       req.ServiceIDs,
		PreferredStaffID: strings.TrimSpace(req.PreferredStaffID),
		From:             from,
		To:               to,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	resp := findSlotsResponse{
		SearchDate:             formatTime(result.SearchDate),
		TotalDurationInMinutes: result.TotalDurationMinutes,
		AvailableSlots:         make([]slotItem, 0, len(result.Slots)),
	}
	for _, s := range result.Slots {
		resp.AvailableSlots = append(resp.AvailableSlots, slotItem{
			StartTime:   formatTime(s.Start),
			EndTime:     formatTime(s.End),
			StaffID:     s.StaffID,
			StaffName:   s.StaffName,
			IsAvailable: true,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type createAppointmentRequest struct {
	StaffID      string   `json:"staffId"`
	StartTimeUTC string   `json:"startTimeUtc"`
	ServiceIDs   []string `json:"serviceIds"`
	Notes        string   `json:"notes"`
}

type appointmentServiceItem struct {
	ServiceID         string  `json:"serviceId"`
	ServiceName       string  `json:"serviceName"`
	Price             float64 `json:"price"`
	DurationInMinutes int     `json:"durationInMinutes"`
}

type appointmentItem struct {
	ID                 string                   `json:"id"`
	CustomerID         string                   `json:"customerId"`
	StaffID            string                   `json:"staffId"`
	StaffName          string                   `json:"staffName"`
	StartTime          string                   `json:"startTime"`
	EndTime            string                   `json:"endTime"`
	Status             string                   `json:"status"`
	TotalPrice         float64                  `json:"totalPrice"`
	Notes              string                   `json:"notes,omitempty"`
	CancellationReason string                   `json:"cancellationReason,omitempty"`
	CancelledAt        string                   `json:"cancelledAt,omitempty"`
	CreatedAt          string                   `json:"createdAt"`
	Services           []appointmentServiceItem `json:"services"`
}

func appointmentToItem(a model.Appointment) appointmentItem {
	item := appointmentItem{
		ID:                 a.ID,
		CustomerID:         a.CustomerID,
		StaffID:            a.StaffID,
		StaffName:          a.StaffName,
		StartTime:          formatTime(a.StartTime),
		EndTime:            formatTime(a.EndTime),
		Status:             string(a.Status),
		TotalPrice:         a.TotalPrice,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CancelledAt:        formatTimePtr(a.CancelledAt),
		CreatedAt:          formatTime(a.CreatedAt),
		Services:           make([]appointmentServiceItem, 0, len(a.Services)),
	}
	for _, s := range a.Services {
		item.Services = append(item.Services, appointmentServiceItem{
			ServiceID:         s.ServiceID,
			ServiceName:       s.ServiceName,
			Price:             s.Price,
			DurationInMinutes: s.DurationMinutes,
		})
	}
	return item
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	customerID := strings.TrimSpace(r.Header.Get(customerHeader))
	if customerID == "" {
		httpx.WriteError(w, http.StatusBadRequest, customerHeader+" header is required")
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	start, err := parseRFC3339(req.StartTimeUTC)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid startTimeUtc")
		return
	}

	appt, err := h.svc.Create(r.Context(), booking.CreateRequest{
		CustomerID: customerID,
		StaffID:    strings.TrimSpace(req.StaffID),
		StartTime:  start,
		ServiceIDs: req.ServiceIDs,
		Notes:      strings.TrimSpace(req.Notes),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, appointmentToItem(appt))
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appointmentToItem(appt))
}

func (h *AppointmentHandler) My(w http.ResponseWriter, r *http.Request) {
	customerID := strings.TrimSpace(r.Header.Get(customerHeader))
	if customerID == "" {
		httpx.WriteError(w, http.StatusBadRequest, customerHeader+" header is required")
		return
	}

	q := r.URL.Query()
	includePast := strings.EqualFold(q.Get("includePast"), "true")
	pageNumber, _ := strconv.Atoi(q.Get("pageNumber"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	appts, err := h.svc.ListForCustomer(r.Context(), customerID, includePast, pageNumber, pageSize)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, appointmentToItem(a))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

type updateAppointmentRequest struct {
	NewStartTimeUTC *string `json:"newStartTimeUtc"`
	NewStaffID      *string `json:"newStaffId"`
	Notes           *string `json:"notes"`
	Status          *string `json:"status"`
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	upd := booking.UpdateRequest{
		NewStaffID: req.NewStaffID,
		Notes:      req.Notes,
	}
	if req.NewStartTimeUTC != nil {
		start, err := parseRFC3339(*req.NewStartTimeUTC)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid newStartTimeUtc")
			return
		}
		upd.NewStartTime = &start
	}
	if req.Status != nil {
		status := model.AppointmentStatus(*req.Status)
		upd.Status = &status
	}

	appt, err := h.svc.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appointmentToItem(appt))
}

type cancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelAppointmentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}

	appt, err := h.svc.Cancel(r.Context(), r.PathValue("id"), strings.TrimSpace(req.CancellationReason))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appointmentToItem(appt))
}

type staffItem struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	FullName    string `json:"fullName"`
	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	ColorHex    string `json:"colorHex,omitempty"`
	IsActive    bool   `json:"isActive"`
}

func staffToItem(s model.Staff) staffItem {
	return staffItem{
		ID:          s.ID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		FullName:    s.FullName(),
		Title:       s.Title,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		ColorHex:    s.ColorHex,
		IsActive:    s.IsActive,
	}
}

type calendarAppointmentItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	StaffID      string   `json:"staffId"`
	StaffName    string   `json:"staffName"`
	CustomerID   string   `json:"customerId"`
	Status       string   `json:"status"`
	TotalPrice   float64  `json:"totalPrice"`
	Notes        string   `json:"notes,omitempty"`
	ServiceNames []string `json:"serviceNames"`
	ColorHex     string   `json:"colorHex,omitempty"`
}

type staffCalendarItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ColorHex string `json:"colorHex,omitempty"`
}

type calendarResponse struct {
	StartDate    string                    `json:"startDate"`
	EndDate      string                    `json:"endDate"`
	Appointments []calendarAppointmentItem `json:"appointments"`
	Staff        []staffCalendarItem       `json:"staff"`
}

func (h *AppointmentHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseRFC3339(q.Get("startDate"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	to, err := parseRFC3339(q.Get("endDate"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	// Axios serializes array params as repeated staffIds[]; a plain
	// comma-separated staffIds is accepted as well.
	var staffIDs []string
	raw := q["staffIds[]"]
	if len(raw) == 0 {
		raw = strings.Split(q.Get("staffIds"), ",")
	}
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			staffIDs = append(staffIDs, id)
		}
	}

	appts, roster, err := h.svc.CalendarView(r.Context(), from, to, staffIDs)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	staffColor := make(map[string]string, len(roster))
	for _, s := range roster {
		staffColor[s.ID] = s.ColorHex
	}

	resp := calendarResponse{
		StartDate:    formatTime(from),
		EndDate:      formatTime(to),
		Appointments: make([]calendarAppointmentItem, 0, len(appts)),
		Staff:        make([]staffCalendarItem, 0, len(roster)),
	}
	for _, a := range appts {
		names := make([]string, 0, len(a.Services))
		for _, s := range a.Services {
			names = append(names, s.ServiceName)
		}
		resp.Appointments = append(resp.Appointments, calendarAppointmentItem{
			ID:           a.ID,
			Title:        strings.Join(names, ", "),
			StartTime:    formatTime(a.StartTime),
			EndTime:      formatTime(a.EndTime),
			StaffID:      a.StaffID,
			StaffName:    a.StaffName,
			CustomerID:   a.CustomerID,
			Status:       string(a.Status),
			TotalPrice:   a.TotalPrice,
			Notes:        a.Notes,
			ServiceNames: names,
			ColorHex:     staffColor[a.StaffID],
		})
	}
	for _, s := range roster {
		resp.Staff = append(resp.Staff, staffCalendarItem{
			ID:       s.ID,
			Name:     s.FullName(),
			ColorHex: s.ColorHex,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
