package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"salonbook/internal/model"
	"salonbook/internal/storage"
	"salonbook/libs/httpx"
)

type StaffHandler struct {
	repo   *storage.StaffRepository
	logger *slog.Logger
}

func NewStaffHandler(repo *storage.StaffRepository, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{repo: repo, logger: logger}
}

func (h *StaffHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/staff", h.List)
	mux.HandleFunc("POST /api/staff", h.Create)
	mux.HandleFunc("GET /api/staff/{id}", h.Get)
	mux.HandleFunc("PUT /api/staff/{id}", h.Update)
	mux.HandleFunc("DELETE /api/staff/{id}", h.Delete)
	mux.HandleFunc("GET /api/staff/{id}/schedule", h.GetSchedule)
	mux.HandleFunc("PUT /api/staff/{id}/schedule", h.PutSchedule)
	mux.HandleFunc("GET /api/staff/{id}/availability-overrides", h.ListOverrides)
	mux.HandleFunc("POST /api/staff/{id}/availability-override", h.CreateOverride)
	mux.HandleFunc("DELETE /api/staff/{id}/availability-override/{overrideId}", h.DeleteOverride)
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.repo.List(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	items := make([]staffItem, 0, len(staff))
	for _, s := range staff {
		items = append(items, staffToItem(s))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, staffToItem(s))
}

type staffRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Title       string `json:"title"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	ColorHex    string `json:"colorHex"`
	IsActive    *bool  `json:"isActive"`
}

func (req *staffRequest) toModel() (model.Staff, string) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		return model.Staff{}, "firstName and lastName are required"
	}
	s := model.Staff{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Title:       strings.TrimSpace(req.Title),
		Email:       strings.TrimSpace(req.Email),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		ColorHex:    strings.TrimSpace(req.ColorHex),
		IsActive:    true,
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	return s, ""
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	s, msg := req.toModel()
	if msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	now := time.Now().UTC()
	s.HiredAt = &now

	created, err := h.repo.Create(r.Context(), s)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, staffToItem(created))
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	s, msg := req.toModel()
	if msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	s.ID = id
	s.HiredAt = current.HiredAt
	s.TerminatedAt = current.TerminatedAt
	if current.IsActive && !s.IsActive {
		now := time.Now().UTC()
		s.TerminatedAt = &now
	}

	if err := h.repo.Update(r.Context(), s); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, staffToItem(s))
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduleDayItem struct {
	DayOfWeek int    `json:"dayOfWeek"`
	IsWorking bool   `json:"isWorking"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (h *StaffHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("id")
	if _, err := h.repo.Get(r.Context(), staffID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	week, err := h.repo.WeeklySchedule(r.Context(), staffID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	items := make([]scheduleDayItem, 0, len(week))
	for _, d := range week {
		items = append(items, scheduleDayItem{
			DayOfWeek: d.Weekday,
			IsWorking: d.IsWorking,
			StartTime: model.FormatMinuteOfDay(d.StartMinute),
			EndTime:   model.FormatMinuteOfDay(d.EndMinute),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *StaffHandler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("id")
	if _, err := h.repo.Get(r.Context(), staffID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	var req []scheduleDayItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	days := make([]model.StaffDay, 0, len(req))
	for _, item := range req {
		if item.DayOfWeek < 0 || item.DayOfWeek > 6 {
			httpx.WriteError(w, http.StatusBadRequest, "dayOfWeek must be 0-6")
			return
		}
		day := model.StaffDay{Weekday: item.DayOfWeek, IsWorking: item.IsWorking}
		if item.IsWorking {
			start, err := model.ParseMinuteOfDay(item.StartTime)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "invalid startTime")
				return
			}
			end, err := model.ParseMinuteOfDay(item.EndTime)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "invalid endTime")
				return
			}
			if end <= start {
				httpx.WriteError(w, http.StatusBadRequest, "endTime must be after startTime")
				return
			}
			day.StartMinute, day.EndMinute = start, end
		}
		days = append(days, day)
	}

	if err := h.repo.ReplaceWeeklySchedule(r.Context(), staffID, days); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type overrideItem struct {
	ID        string `json:"id"`
	StaffID   string `json:"staffId"`
	Date      string `json:"date"`
	Type      int    `json:"type"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func overrideToItem(ov model.AvailabilityOverride) overrideItem {
	item := overrideItem{
		ID:      ov.ID,
		StaffID: ov.StaffID,
		Date:    ov.Date.Format("2006-01-02"),
		Type:    int(ov.Kind),
		Reason:  ov.Reason,
	}
	if ov.Kind != model.OverrideFullDayUnavailable {
		item.StartTime = model.FormatMinuteOfDay(ov.StartMinute)
		item.EndTime = model.FormatMinuteOfDay(ov.EndMinute)
	}
	return item
}

func (h *StaffHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("id")
	if _, err := h.repo.Get(r.Context(), staffID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	overrides, err := h.repo.ListOverrides(r.Context(), staffID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	items := make([]overrideItem, 0, len(overrides))
	for _, ov := range overrides {
		items = append(items, overrideToItem(ov))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

type createOverrideRequest struct {
	Date      string `json:"date"`
	Type      int    `json:"type"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Reason    string `json:"reason"`
}

func (h *StaffHandler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("id")
	if _, err := h.repo.Get(r.Context(), staffID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	var req createOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	kind := model.OverrideKind(req.Type)
	if !kind.Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "unknown override type")
		return
	}

	ov := model.AvailabilityOverride{
		StaffID: staffID,
		Date:    date,
		Kind:    kind,
		Reason:  strings.TrimSpace(req.Reason),
	}
	if kind != model.OverrideFullDayUnavailable {
		start, err := model.ParseMinuteOfDay(req.StartTime)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid startTime")
			return
		}
		end, err := model.ParseMinuteOfDay(req.EndTime)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid endTime")
			return
		}
		if end <= start {
			httpx.WriteError(w, http.StatusBadRequest, "endTime must be after startTime")
			return
		}
		ov.StartMinute, ov.EndMinute = start, end
	}

	// Reject a same-kind override overlapping an existing one on the same
	// date; admins fix the existing entry instead of stacking duplicates.
	existing, err := h.repo.Overrides(r.Context(), staffID, date, date)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	for _, cur := range existing {
		if cur.Kind != ov.Kind {
			continue
		}
		if ov.Kind == model.OverrideFullDayUnavailable ||
			(ov.StartMinute < cur.EndMinute && cur.StartMinute < ov.EndMinute) {
			httpx.WriteError(w, http.StatusConflict, "an overlapping override of this type already exists for that date")
			return
		}
	}

	created, err := h.repo.CreateOverride(r.Context(), ov)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, overrideToItem(created))
}

func (h *StaffHandler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteOverride(r.Context(), r.PathValue("id"), r.PathValue("overrideId")); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
