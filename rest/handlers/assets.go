package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/rest/types"
	"github.com/rediwo/refdata/service"
)

// AssetHandler serves the asset and asset-pair endpoints
type AssetHandler struct {
	service         *service.Service
	defaultPageSize int
	logger          logger.Logger
}

func NewAssetHandler(svc *service.Service, defaultPageSize int, l logger.Logger) *AssetHandler {
	return &AssetHandler{
		service:         svc,
		defaultPageSize: defaultPageSize,
		logger:          logger.OrGlobal(l),
	}
}

func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req types.AssetCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	in, err := req.Model()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	asset, err := h.service.CreateAsset(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	opts, err := types.ParseListParams(r.URL.Query(), h.defaultPageSize)
	if err != nil {
		writeError(w, h.logger, &badRequest{err})
		return
	}

	page, err := h.service.RetrieveAssets(r.Context(), opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.service.RetrieveAsset(r.Context(), mux.Vars(r)["assetId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAsset(r.Context(), mux.Vars(r)["assetId"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssetHandler) CreateAssetPair(w http.ResponseWriter, r *http.Request) {
	var req types.AssetPairCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	in, err := req.Model()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	pair, err := h.service.CreateAssetPair(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *AssetHandler) ListAssetPairs(w http.ResponseWriter, r *http.Request) {
	opts, err := types.ParseListParams(r.URL.Query(), h.defaultPageSize)
	if err != nil {
		writeError(w, h.logger, &badRequest{err})
		return
	}

	page, err := h.service.RetrieveAssetPairs(r.Context(), opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AssetHandler) GetAssetPair(w http.ResponseWriter, r *http.Request) {
	pair, err := h.service.RetrieveAssetPair(r.Context(), mux.Vars(r)["assetPairId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *AssetHandler) DeleteAssetPair(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAssetPair(r.Context(), mux.Vars(r)["assetPairId"]); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &badRequest{fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}
