package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"salonbook/internal/model"
	"salonbook/internal/storage"
	"salonbook/libs/httpx"
)

type ServicesHandler struct {
	repo   *storage.CatalogRepository
	logger *slog.Logger
}

func NewServicesHandler(repo *storage.CatalogRepository, logger *slog.Logger) *ServicesHandler {
	return &ServicesHandler{repo: repo, logger: logger}
}

func (h *ServicesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/services", h.List)
	mux.HandleFunc("POST /api/services", h.Create)
	mux.HandleFunc("GET /api/services/{id}", h.Get)
	mux.HandleFunc("PUT /api/services/{id}", h.Update)
	mux.HandleFunc("DELETE /api/services/{id}", h.Delete)
	mux.HandleFunc("GET /api/service-categories", h.ListCategories)
	mux.HandleFunc("POST /api/service-categories", h.CreateCategory)
	mux.HandleFunc("PUT /api/service-categories/{id}", h.UpdateCategory)
	mux.HandleFunc("DELETE /api/service-categories/{id}", h.DeleteCategory)
}

type serviceItem struct {
	ID                  string   `json:"id"`
	CategoryID          string   `json:"categoryId,omitempty"`
	CategoryName        string   `json:"categoryName,omitempty"`
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Price               float64  `json:"price"`
	DurationInMinutes   int      `json:"durationInMinutes"`
	BufferTimeInMinutes int      `json:"bufferTimeInMinutes"`
	IsActive            bool     `json:"isActive"`
	ColorHex            string   `json:"colorHex,omitempty"`
	AssignedStaff       []string `json:"assignedStaff"`
}

func serviceToItem(s model.Service) serviceItem {
	staff := s.StaffIDs
	if staff == nil {
		staff = []string{}
	}
	return serviceItem{
		ID:                  s.ID,
		CategoryID:          s.CategoryID,
		CategoryName:        s.CategoryName,
		Name:                s.Name,
		Description:         s.Description,
		Price:               s.Price,
		DurationInMinutes:   s.DurationMinutes,
		BufferTimeInMinutes: s.BufferMinutes,
		IsActive:            s.IsActive,
		ColorHex:            s.ColorHex,
		AssignedStaff:       staff,
	}
}

func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.repo.List(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, serviceToItem(s))
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *ServicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	svc, err := h.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, serviceToItem(svc))
}

type serviceRequest struct {
	CategoryID          string   `json:"categoryId"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Price               float64  `json:"price"`
	DurationInMinutes   int      `json:"durationInMinutes"`
	BufferTimeInMinutes int      `json:"bufferTimeInMinutes"`
	IsActive            *bool    `json:"isActive"`
	ColorHex            string   `json:"colorHex"`
	AssignedStaff       []string `json:"assignedStaff"`
}

func (req *serviceRequest) toModel() (model.Service, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return model.Service{}, "name is required"
	}
	if req.DurationInMinutes <= 0 {
		return model.Service{}, "durationInMinutes must be positive"
	}
	if req.BufferTimeInMinutes < 0 {
		return model.Service{}, "bufferTimeInMinutes must not be negative"
	}
	if req.Price < 0 {
		return model.Service{}, "price must not be negative"
	}
	svc := model.Service{
		CategoryID:      strings.TrimSpace(req.CategoryID),
		Name:            req.Name,
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price,
		DurationMinutes: req.DurationInMinutes,
		BufferMinutes:   req.BufferTimeInMinutes,
		IsActive:        true,
		ColorHex:        strings.TrimSpace(req.ColorHex),
		StaffIDs:        req.AssignedStaff,
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	return svc, ""
}

func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	svc, msg := req.toModel()
	if msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	created, err := h.repo.Create(r.Context(), svc)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, serviceToItem(created))
}

func (h *ServicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	svc, msg := req.toModel()
	if msg != "" {
		httpx.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	svc.ID = r.PathValue("id")
	if err := h.repo.Update(r.Context(), svc); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, serviceToItem(svc))
}

func (h *ServicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
	IsActive     bool   `json:"isActive"`
}

func (h *ServicesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	items := make([]categoryItem, 0, len(categories))
	for _, c := range categories {
		items = append(items, categoryItem{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			DisplayOrder: c.DisplayOrder,
			IsActive:     c.IsActive,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

type createCategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"displayOrder"`
	IsActive     *bool  `json:"isActive"`
}

func (h *ServicesHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	c := model.ServiceCategory{
		Name:         req.Name,
		Description:  strings.TrimSpace(req.Description),
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	created, err := h.repo.CreateCategory(r.Context(), c)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, categoryItem{
		ID:           created.ID,
		Name:         created.Name,
		Description:  created.Description,
		DisplayOrder: created.DisplayOrder,
		IsActive:     created.IsActive,
	})
}

func (h *ServicesHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	c := model.ServiceCategory{
		ID:           r.PathValue("id"),
		Name:         req.Name,
		Description:  strings.TrimSpace(req.Description),
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := h.repo.UpdateCategory(r.Context(), c); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, categoryItem{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		DisplayOrder: c.DisplayOrder,
		IsActive:     c.IsActive,
	})
}

func (h *ServicesHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
