package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"urban-pulse/internal/usecase"
)

type GeocodeHandler struct {
	geocodeUseCase usecase.GeocodeUseCase
}

func NewGeocodeHandler(geocodeUseCase usecase.GeocodeUseCase) *GeocodeHandler {
	return &GeocodeHandler{geocodeUseCase: geocodeUseCase}
}

// ReverseGeocode GET /geocode/reverse?lat=&lon= - 座標から地名を取得
func (h *GeocodeHandler) ReverseGeocode(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		badRequest(c, "latは数値で指定してください", err)
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		badRequest(c, "lonは数値で指定してください", err)
		return
	}

	name, err := h.geocodeUseCase.LocationName(c.Request.Context(), lat, lon)
	if err != nil {
		respondError(c, "地名の取得に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name})
}
