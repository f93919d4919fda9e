package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/skip2/go-qrcode"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/types/vendor"
)

const vendorCacheSize = 256

// VendorService reads the catalog. Vendors are immutable reference data, so
// single-vendor lookups sit behind an LRU cache.
type VendorService struct {
	store store.Store
	cache *lru.Cache
}

func NewVendorService(st store.Store) *VendorService {
	cache, _ := lru.New(vendorCacheSize)
	return &VendorService{store: st, cache: cache}
}

func (s *VendorService) Get(ctx context.Context, id string) (*vendor.Vendor, error) {
	if cached, ok := s.cache.Get(id); ok {
		v := cached.(vendor.Vendor)
		return &v, nil
	}

	v, err := s.store.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, *v)
	return v, nil
}

// List returns the catalog with partner vendors first, then by rating.
func (s *VendorService) List(ctx context.Context) ([]vendor.Vendor, error) {
	vendors, err := s.store.ListVendors(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(vendors, func(i, j int) bool {
		if vendors[i].IsPartner != vendors[j].IsPartner {
			return vendors[i].IsPartner
		}
		return vendors[i].Rating > vendors[j].Rating
	})
	return vendors, nil
}

// Search filters the catalog by deal type. For daily deals the day parameter
// narrows to vendors with an offer on that weekday (lowercase name, today
// when empty).
func (s *VendorService) Search(ctx context.Context, dealType vendor.DealType, day string) ([]vendor.Vendor, error) {
	vendors, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if day == "" {
		day = strings.ToLower(time.Now().Weekday().String())
	}

	var out []vendor.Vendor
	for _, v := range vendors {
		switch dealType {
		case vendor.DealBirthday:
			if v.Deals.Birthday != nil {
				out = append(out, v)
			}
		case vendor.DealDaily:
			if len(v.Deals.Daily[day]) > 0 {
				out = append(out, v)
			}
		case vendor.DealSpecial:
			if len(v.Deals.Special) > 0 {
				out = append(out, v)
			}
		default:
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *VendorService) FeaturedDeals(ctx context.Context) ([]vendor.FeaturedDeal, error) {
	return s.store.ListFeaturedDeals(ctx, time.Now())
}

type CheckInCodeResponse struct {
	VendorID     string `json:"vendor_id"`
	Payload      string `json:"payload"`
	QrCodeBase64 string `json:"qr_code_base64"`
}

// CheckInCode renders the vendor's check-in QR as a base64 PNG. Only vendors
// flagged with QR capability have one.
func (s *VendorService) CheckInCode(ctx context.Context, vendorID string) (*CheckInCodeResponse, error) {
	v, err := s.Get(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if !v.HasQrCode {
		return nil, fmt.Errorf("vendor %s has no check-in code: %w", vendorID, apperr.ErrNotFound)
	}

	payload := checkin.Scheme + v.ID
	pngBytes, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &CheckInCodeResponse{
		VendorID:     v.ID,
		Payload:      payload,
		QrCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
	}, nil
}
