package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTokenProvider(t *testing.T) {
	token, err := NewStaticTokenProvider("secret").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	_, err = NewStaticTokenProvider("").Token(context.Background())
	assert.Error(t, err)
}

func TestFetchSKUs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/catalog/skus", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"skus":[{"skuGuid":"SKU-1","skuName":"MARLBORO GOLD PACK","brand":"MARLBORO","packUpc":"028200003843"}]}`))
	}))
	defer srv.Close()

	client := NewManufacturerAPIClient(srv.URL, NewStaticTokenProvider("secret"))
	skus, err := client.FetchSKUs(context.Background())
	require.NoError(t, err)
	require.Len(t, skus, 1)
	assert.Equal(t, "SKU-1", skus[0].SKUGUID)
	assert.Equal(t, "028200003843", skus[0].PackUPC)
}

func TestFetchAllowances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/catalog/allowances", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"allowances":[{"allowanceId":9,"allowanceType":"LOYALTY","minQty":1,"maxAllowancePerTransaction":"0.97","active":true,"skuGuids":["SKU-1"]}]}`))
	}))
	defer srv.Close()

	client := NewManufacturerAPIClient(srv.URL, NewStaticTokenProvider("secret"))
	allowances, err := client.FetchAllowances(context.Background())
	require.NoError(t, err)
	require.Len(t, allowances, 1)
	assert.Equal(t, int64(9), allowances[0].AllowanceID)
	assert.Equal(t, "0.97", allowances[0].MaxAllowancePerTransaction)
	assert.Equal(t, []string{"SKU-1"}, allowances[0].SKUGUIDs)
}

func TestFetchSKUsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewManufacturerAPIClient(srv.URL, NewStaticTokenProvider("secret"))
	_, err := client.FetchSKUs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "token expired")
}

func TestFetchSKUsMissingConfig(t *testing.T) {
	client := NewManufacturerAPIClient("", NewStaticTokenProvider("secret"))
	_, err := client.FetchSKUs(context.Background())
	assert.Error(t, err)
}
