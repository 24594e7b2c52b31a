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

type BusinessHandler struct {
	repo   *storage.BusinessRepository
	logger *slog.Logger
}

func NewBusinessHandler(repo *storage.BusinessRepository, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{repo: repo, logger: logger}
}

func (h *BusinessHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/business/settings", h.Get)
	mux.HandleFunc("PUT /api/business/settings", h.Put)
}

type operatingHourItem struct {
	DayOfWeek int    `json:"dayOfWeek"`
	IsClosed  bool   `json:"isClosed"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

type addressItem struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

type businessSettingsItem struct {
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	PhoneNumber    string              `json:"phoneNumber,omitempty"`
	Email          string              `json:"email,omitempty"`
	WebsiteURL     string              `json:"websiteUrl,omitempty"`
	Timezone       string              `json:"timezone"`
	Address        addressItem         `json:"address"`
	OperatingHours []operatingHourItem `json:"operatingHours"`
}

func settingsToItem(s model.BusinessSettings) businessSettingsItem {
	item := businessSettingsItem{
		Name:        s.Name,
		Description: s.Description,
		PhoneNumber: s.PhoneNumber,
		Email:       s.Email,
		WebsiteURL:  s.WebsiteURL,
		Timezone:    s.Timezone,
		Address: addressItem{
			Line1:      s.Address.Line1,
			Line2:      s.Address.Line2,
			City:       s.Address.City,
			State:      s.Address.State,
			PostalCode: s.Address.PostalCode,
			Country:    s.Address.Country,
		},
		OperatingHours: make([]operatingHourItem, 0, len(s.OperatingHours)),
	}
	for _, oh := range s.OperatingHours {
		item.OperatingHours = append(item.OperatingHours, operatingHourItem{
			DayOfWeek: oh.Weekday,
			IsClosed:  oh.IsClosed,
			OpenTime:  model.FormatMinuteOfDay(oh.OpenMinute),
			CloseTime: model.FormatMinuteOfDay(oh.CloseMinute),
		})
	}
	return item
}

func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.Settings(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, settingsToItem(settings))
}

func (h *BusinessHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req businessSettingsItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "unknown timezone")
		return
	}

	settings := model.BusinessSettings{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Email:       strings.TrimSpace(req.Email),
		WebsiteURL:  strings.TrimSpace(req.WebsiteURL),
		Timezone:    req.Timezone,
		Address: model.BusinessAddress{
			Line1:      strings.TrimSpace(req.Address.Line1),
			Line2:      strings.TrimSpace(req.Address.Line2),
			City:       strings.TrimSpace(req.Address.City),
			State:      strings.TrimSpace(req.Address.State),
			PostalCode: strings.TrimSpace(req.Address.PostalCode),
			Country:    strings.TrimSpace(req.Address.Country),
		},
	}

	seen := map[int]bool{}
	for _, oh := range req.OperatingHours {
		if oh.DayOfWeek < 0 || oh.DayOfWeek > 6 {
			httpx.WriteError(w, http.StatusBadRequest, "dayOfWeek must be 0-6")
			return
		}
		if seen[oh.DayOfWeek] {
			httpx.WriteError(w, http.StatusBadRequest, "duplicate dayOfWeek entry")
			return
		}
		seen[oh.DayOfWeek] = true

		entry := model.OperatingHours{Weekday: oh.DayOfWeek, IsClosed: oh.IsClosed}
		if !oh.IsClosed {
			open, err := model.ParseMinuteOfDay(oh.OpenTime)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "invalid openTime")
				return
			}
			closeMin, err := model.ParseMinuteOfDay(oh.CloseTime)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "invalid closeTime")
				return
			}
			if closeMin <= open {
				httpx.WriteError(w, http.StatusBadRequest, "closeTime must be after openTime")
				return
			}
			entry.OpenMinute, entry.CloseMinute = open, closeMin
		}
		settings.OperatingHours = append(settings.OperatingHours, entry)
	}

	if err := h.repo.Update(r.Context(), settings); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	updated, err := h.repo.Settings(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, settingsToItem(updated))
}
