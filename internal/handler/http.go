package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"md-article-parser/internal/models"
)

// HTTPHandler serves GET /?url= and POST / requests. A POST body is either a
// JSON ParseRequest or raw HTML with the page URL in the url query parameter.
type HTTPHandler struct {
	service      *Service
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewHTTPHandler(service *Service, maxBodyBytes int64, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{service: service, maxBodyBytes: maxBodyBytes, logger: logger}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for key, value := range CORSHeaders {
		w.Header().Set(key, value)
	}

	h.logger.Info("Request received", zap.String("method", r.Method), zap.String("url", r.URL.String()))

	query := r.URL.Query()
	timeoutMs := ParseTimeout(query.Get("timeout"))

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		targetURL := query.Get("url")
		if targetURL == "" {
			writeResponse(w, errorResponse(http.StatusBadRequest, "Missing \"url\" query parameter", ""))
			return
		}
		writeResponse(w, h.service.Parse(r.Context(), models.ParseRequest{URL: targetURL}, timeoutMs))
	case http.MethodPost:
		req, err := h.decodeBody(w, r)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResponse(w, errorResponse(http.StatusRequestEntityTooLarge, "Request body too large", err.Error()))
			return
		}
		if err != nil {
			writeResponse(w, errorResponse(http.StatusBadRequest, "Invalid request body", err.Error()))
			return
		}
		if req.Markup == "" {
			writeResponse(w, errorResponse(http.StatusBadRequest, "Missing markup body", ""))
			return
		}
		writeResponse(w, h.service.Parse(r.Context(), req, timeoutMs))
	default:
		writeResponse(w, errorResponse(http.StatusMethodNotAllowed, "Method not allowed", ""))
	}
}

// decodeBody reads the POST body. Bodies over maxBodyBytes fail with *http.MaxBytesError.
func (h *HTTPHandler) decodeBody(w http.ResponseWriter, r *http.Request) (models.ParseRequest, error) {
	body := io.Reader(r.Body)
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req models.ParseRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return models.ParseRequest{}, err
		}
		return req, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return models.ParseRequest{}, err
	}
	return models.ParseRequest{URL: r.URL.Query().Get("url"), Markup: string(data)}, nil
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.JSON())
}
