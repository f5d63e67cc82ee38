package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/imagedrive/internal/logging"
)

// request is the kind-multiplexed envelope every client call arrives in.
// The field is named httpMethod for wire compatibility: the transport is
// always an HTTP POST, the field selects the logical operation.
type request struct {
	HTTPMethod string `json:"httpMethod"`
	UpdatedID  string `json:"updated_id"`
	Title      string `json:"title"`
	Password   string `json:"password"`
}

// response is the outer envelope. Data carries the payload as a JSON-encoded
// string, so clients decode twice.
type response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
	Data       string `json:"data,omitempty"`
}

type deleteResult struct {
	Success string `json:"success"`
}

// Handler serves the single metadata route.
type Handler struct {
	service *BoardService
	logger  logging.Logger
}

func NewHandler(s *BoardService, l logging.Logger) *Handler {
	return &Handler{service: s, logger: l.With("module", "api_handler")}
}

// write emits the envelope. The HTTP status mirrors the envelope statusCode
// so plain HTTP clients see the outcome too.
func (h *Handler) write(ctx context.Context, w http.ResponseWriter, resp *response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error(ctx, "error writing response", "error", err.Error())
	}
}

func (h *Handler) writeData(ctx context.Context, w http.ResponseWriter, status int, body string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.write(ctx, w, &response{StatusCode: http.StatusInternalServerError, Body: "Internal error"})
		return
	}
	h.write(ctx, w, &response{StatusCode: status, Body: body, Data: string(data)})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	if r.Method != http.MethodPost {
		h.write(ctx, w, &response{StatusCode: http.StatusMethodNotAllowed, Body: "POST only"})
		return
	}

	req := &request{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.write(ctx, w, &response{StatusCode: http.StatusBadRequest, Body: "Malformed request"})
		return
	}

	h.logger.Debug(ctx, "request received", "kind", req.HTTPMethod, "key", req.UpdatedID)

	switch req.HTTPMethod {

	case "GET":
		rows, err := h.service.ListRows(ctx)
		if err != nil {
			h.logger.Error(ctx, "listing failed", "error", err.Error())
			h.write(ctx, w, &response{StatusCode: http.StatusInternalServerError, Body: "Internal error"})
			return
		}
		h.writeData(ctx, w, http.StatusOK, "Success", rows)

	case "POST":
		rows, err := h.service.CreateRecord(ctx, req.Title, req.UpdatedID, req.Password)
		if err != nil {
			h.logger.Error(ctx, "create failed", "error", err.Error())
			h.write(ctx, w, &response{StatusCode: http.StatusInternalServerError, Body: "Internal error"})
			return
		}
		h.writeData(ctx, w, http.StatusOK, "Success", rows)

	case "DELETE":
		ok, err := h.service.DeleteRecord(ctx, req.UpdatedID, req.Password)
		if err != nil {
			h.logger.Error(ctx, "delete failed", "error", err.Error())
			h.write(ctx, w, &response{StatusCode: http.StatusInternalServerError, Body: "Internal error"})
			return
		}
		if !ok {
			h.writeData(ctx, w, http.StatusForbidden, "Password does not match", deleteResult{Success: "n"})
			return
		}
		h.writeData(ctx, w, http.StatusOK, "File deleted", deleteResult{Success: "y"})

	default:
		h.write(ctx, w, &response{StatusCode: http.StatusBadRequest, Body: "Unknown request kind"})
	}
}
