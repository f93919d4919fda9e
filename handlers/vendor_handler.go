package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ganjaGuideAPI/internal/types/vendor"
	"ganjaGuideAPI/services"
)

type VendorHandler struct {
	vendorService *services.VendorService
}

func NewVendorHandler(vendorService *services.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// GetVendors lists the catalog, optionally filtered by deal_type (and day for
// daily deals).
func (h *VendorHandler) GetVendors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dealType := vendor.DealType(r.URL.Query().Get("deal_type"))
	day := r.URL.Query().Get("day")

	var (
		vendors []vendor.Vendor
		err     error
	)
	if dealType != "" {
		vendors, err = h.vendorService.Search(ctx, dealType, day)
	} else {
		vendors, err = h.vendorService.List(ctx)
	}
	if err != nil {
		respondServiceError(w, "GetVendors", err)
		return
	}

	if vendors == nil {
		vendors = []vendor.Vendor{}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"vendors": vendors})
}

func (h *VendorHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vendorID := mux.Vars(r)["id"]
	v, err := h.vendorService.Get(ctx, vendorID)
	if err != nil {
		respondServiceError(w, "GetVendor", err)
		return
	}

	respondWithJSON(w, http.StatusOK, v)
}

func (h *VendorHandler) GetFeaturedDeals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	deals, err := h.vendorService.FeaturedDeals(ctx)
	if err != nil {
		respondServiceError(w, "GetFeaturedDeals", err)
		return
	}

	if deals == nil {
		deals = []vendor.FeaturedDeal{}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"featured_deals": deals})
}

// GetCheckInCode serves the printable QR for a vendor with QR capability.
func (h *VendorHandler) GetCheckInCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vendorID := mux.Vars(r)["id"]
	code, err := h.vendorService.CheckInCode(ctx, vendorID)
	if err != nil {
		respondServiceError(w, "GetCheckInCode", err)
		return
	}

	respondWithJSON(w, http.StatusOK, code)
}
