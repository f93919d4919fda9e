package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/types/vendor"
)

func TestVendorListPartnersFirst(t *testing.T) {
	svc := NewVendorService(newTestStore(t))

	vendors, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, vendors)

	seenNonPartner := false
	for _, v := range vendors {
		if !v.IsPartner {
			seenNonPartner = true
		} else {
			assert.False(t, seenNonPartner, "partner %s listed after a non-partner", v.ID)
		}
	}
}

func TestVendorSearchByDealType(t *testing.T) {
	svc := NewVendorService(newTestStore(t))
	ctx := context.Background()

	birthday, err := svc.Search(ctx, vendor.DealBirthday, "")
	require.NoError(t, err)
	for _, v := range birthday {
		assert.NotNil(t, v.Deals.Birthday)
	}

	monday, err := svc.Search(ctx, vendor.DealDaily, "monday")
	require.NoError(t, err)
	require.Len(t, monday, 1)
	assert.Equal(t, "vnd-midnight-greenery", monday[0].ID)
}

func TestVendorGetUnknown(t *testing.T) {
	svc := NewVendorService(newTestStore(t))

	_, err := svc.Get(context.Background(), "vnd-nope")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCheckInCodePayload(t *testing.T) {
	svc := NewVendorService(newTestStore(t))

	code, err := svc.CheckInCode(context.Background(), "vnd-midnight-greenery")
	require.NoError(t, err)
	assert.Equal(t, checkin.Scheme+"vnd-midnight-greenery", code.Payload)

	png, err := base64.StdEncoding.DecodeString(code.QrCodeBase64)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestCheckInCodeVendorWithoutQR(t *testing.T) {
	svc := NewVendorService(newTestStore(t))

	_, err := svc.CheckInCode(context.Background(), "vnd-glacier-buds")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
