package http

import (
	"math/big"
	"net/http"

	apicommon "github.com/compose-network/batch-submitter/server/api"
	"github.com/compose-network/batch-submitter/x/submitter"
	"github.com/rs/zerolog"
)

// StatusSource is the controller view served over HTTP.
type StatusSource interface {
	Status() submitter.Status
	ChainID() *big.Int
}

type Handler struct {
	src  StatusSource
	role string
	log  zerolog.Logger
}

func NewHandler(src StatusSource, role string, log zerolog.Logger) *Handler {
	return &Handler{
		src:  src,
		role: role,
		log:  log.With().Str("component", "submitter-http").Logger(),
	}
}

type statusResponse struct {
	Role      string           `json:"role"`
	L2ChainID string           `json:"l2_chain_id,omitempty"`
	Status    submitter.Status `json:"status"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if h.src == nil {
		h.log.Warn().Msg("Status requested before submitter started")
		apicommon.WriteError(w, r, http.StatusServiceUnavailable, "submitter_unavailable", "Submitter is not running", nil)
		return
	}

	resp := statusResponse{Role: h.role, Status: h.src.Status()}
	if id := h.src.ChainID(); id != nil {
		resp.L2ChainID = id.String()
	}
	apicommon.WriteJSON(w, http.StatusOK, resp)
}
