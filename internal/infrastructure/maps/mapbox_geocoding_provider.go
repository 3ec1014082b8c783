package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"urban-pulse/internal/domain/repository"
)

const mapboxReverseURL = "https://api.mapbox.com/search/geocode/v6/reverse"

// MapboxGeocodingProvider はMapbox Geocoding API v6を使った逆ジオコーディングの実装
type MapboxGeocodingProvider struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewMapboxGeocodingProvider は新しいプロバイダを生成する
func NewMapboxGeocodingProvider(accessToken string) repository.GeocodingRepository {
	return newMapboxGeocodingProvider(accessToken, mapboxReverseURL)
}

func newMapboxGeocodingProvider(accessToken, baseURL string) *MapboxGeocodingProvider {
	return &MapboxGeocodingProvider{
		accessToken: accessToken,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// LocationName は座標に最も近い地物の名前を返す
func (m *MapboxGeocodingProvider) LocationName(ctx context.Context, lat, lon float64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.buildURL(lat, lon), nil)
	if err != nil {
		return "", fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp mapboxReverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	if len(apiResp.Features) == 0 {
		return "", errors.New("APIから該当する地物が返されませんでした")
	}
	return apiResp.Features[0].Properties.Name, nil
}

func (m *MapboxGeocodingProvider) buildURL(lat, lon float64) string {
	params := url.Values{}
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("access_token", m.accessToken)
	return fmt.Sprintf("%s?%s", m.baseURL, params.Encode())
}

// --- Mapbox APIのレスポンスをパースするための構造体 ---

type mapboxReverseResponse struct {
	Features []mapboxFeature `json:"features"`
}
type mapboxFeature struct {
	Properties struct {
		Name        string `json:"name"`
		FullAddress string `json:"full_address"`
	} `json:"properties"`
}
