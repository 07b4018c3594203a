package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/metrics"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// RequestError provides structured error information for HTTP responses.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

// Handler processes HTTP requests for the creation registry. It recovers
// caller identities from request signatures and delegates to the registry;
// creation requests may inline content or reference a blob staged in the
// artifact store by content hash.
type Handler struct {
	registry interfaces.CreationRegistry
	store    interfaces.ArtifactStore
	log      *slog.Logger
}

// NewHandler creates an HTTP request handler. The artifact store is
// optional; without one, creation requests must inline their content.
func NewHandler(registry interfaces.CreationRegistry, store interfaces.ArtifactStore, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		store:    store,
		log:      log,
	}
}

// SetAllowedActorRequest is the body of POST /api/admin/allowed-actor.
type SetAllowedActorRequest struct {
	NewActor interfaces.Identity `json:"new_actor"`
}

// TransferOwnershipRequest is the body of POST /api/admin/transfer-ownership.
type TransferOwnershipRequest struct {
	Nominee interfaces.Identity `json:"nominee"`
}

// CreateRequest is the body of POST /api/create. Exactly one of Content
// (base64) and ContentHash (hex, resolved via the artifact store) must be
// set.
type CreateRequest struct {
	Salt        interfaces.Salt `json:"salt"`
	Content     []byte          `json:"content,omitempty"`
	ContentHash string          `json:"content_hash,omitempty"`
}

// CreateResponse is the reply to a successful creation.
type CreateResponse struct {
	Location    interfaces.Identity    `json:"location"`
	Salt        interfaces.Salt        `json:"salt"`
	ContentHash interfaces.ContentHash `json:"content_hash"`
}

// AccessStateResponse is the reply to GET /api/public/access.
type AccessStateResponse struct {
	Owner        interfaces.Identity  `json:"owner"`
	PendingOwner *interfaces.Identity `json:"pending_owner,omitempty"`
	AllowedActor interfaces.Identity  `json:"allowed_actor"`
	Registry     interfaces.Identity  `json:"registry"`
}

// HandleSetAllowedActor processes allowed-actor rotation requests.
//
// URL: POST /api/admin/allowed-actor
// Body: {"new_actor": "<40-char hex>"}; signed via X-Registry-Signature.
func (h *Handler) HandleSetAllowedActor(w http.ResponseWriter, r *http.Request) {
	caller, body, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req SetAllowedActorRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, &RequestError{http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)})
		return
	}

	if err := h.registry.SetAllowedActor(caller, req.NewActor); err != nil {
		h.writeError(w, h.registryError(err))
		return
	}

	h.writeJSON(w, map[string]string{"allowed_actor": req.NewActor.String()})
}

// HandleTransferOwnership processes ownership nomination requests.
//
// URL: POST /api/admin/transfer-ownership
// Body: {"nominee": "<40-char hex>"}; signed via X-Registry-Signature.
func (h *Handler) HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	caller, body, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req TransferOwnershipRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, &RequestError{http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)})
		return
	}

	if err := h.registry.TransferOwnership(caller, req.Nominee); err != nil {
		h.writeError(w, h.registryError(err))
		return
	}

	h.writeJSON(w, map[string]string{"pending_owner": req.Nominee.String()})
}

// HandleAcceptOwnership completes the two-step ownership handshake.
//
// URL: POST /api/admin/accept-ownership
// Body: {} (signed); the caller must be the nominated successor.
func (h *Handler) HandleAcceptOwnership(w http.ResponseWriter, r *http.Request) {
	caller, _, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.registry.AcceptOwnership(caller); err != nil {
		h.writeError(w, h.registryError(err))
		return
	}

	h.writeJSON(w, map[string]string{"owner": caller.String()})
}

// HandleCreate processes creation requests from the allowed actor.
//
// URL: POST /api/create
// Body: {"salt": "<64-char hex>", "content": "<base64>"} or
// {"salt": ..., "content_hash": "<64-char hex>"} to resolve a staged blob.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, body, err := h.authenticate(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req CreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, &RequestError{http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)})
		return
	}

	content := req.Content
	if len(content) == 0 && req.ContentHash != "" {
		content, err = h.resolveContent(r, req.ContentHash)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	location, err := h.registry.Create(caller, req.Salt, content)
	if err != nil {
		h.writeError(w, h.registryError(err))
		return
	}

	h.writeJSON(w, CreateResponse{
		Location:    location,
		Salt:        req.Salt,
		ContentHash: h.registry.HashContent(content),
	})
}

// HandleComputeLocation derives a target location without creating.
//
// URL: GET /api/public/compute-location?salt=<hex>&content_hash=<hex>
func (h *Handler) HandleComputeLocation(w http.ResponseWriter, r *http.Request) {
	salt, err := interfaces.NewSaltFromHex(r.URL.Query().Get("salt"))
	if err != nil {
		h.writeError(w, &RequestError{http.StatusBadRequest, fmt.Errorf("invalid salt: %w", err)})
		return
	}

	contentHash, err := interfaces.NewContentHashFromHex(r.URL.Query().Get("content_hash"))
	if err != nil {
		h.writeError(w, &RequestError{http.StatusBadRequest, fmt.Errorf("invalid content hash: %w", err)})
		return
	}

	h.writeJSON(w, map[string]string{
		"location": h.registry.ComputeLocation(salt, contentHash).String(),
	})
}

// HandleContentHash hashes the raw request body.
//
// URL: POST /api/public/content-hash
func (h *Handler) HandleContentHash(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, &RequestError{http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err)})
		return
	}

	h.writeJSON(w, map[string]string{
		"content_hash": h.registry.HashContent(body).String(),
	})
}

// HandleAccessState reports the current owner, pending owner, and allowed
// actor.
//
// URL: GET /api/public/access
func (h *Handler) HandleAccessState(w http.ResponseWriter, r *http.Request) {
	resp := AccessStateResponse{
		Owner:        h.registry.Owner(),
		AllowedActor: h.registry.AllowedActor(),
		Registry:     h.registry.RegistryIdentity(),
	}
	if pending, ok := h.registry.PendingOwner(); ok {
		resp.PendingOwner = &pending
	}

	h.writeJSON(w, resp)
}

func (h *Handler) authenticate(r *http.Request) (interfaces.Identity, []byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err != nil {
		return interfaces.Identity{}, nil, &RequestError{http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err)}
	}

	caller, err := recoverCaller(r, body)
	if err != nil {
		metrics.AuthFailuresTotal.Inc()
		return interfaces.Identity{}, nil, &RequestError{http.StatusUnauthorized, err}
	}

	return caller, body, nil
}

func (h *Handler) resolveContent(r *http.Request, hashHex string) ([]byte, error) {
	if h.store == nil {
		return nil, &RequestError{http.StatusBadRequest, errors.New("no artifact store configured, content must be inlined")}
	}

	hash, err := interfaces.NewContentHashFromHex(hashHex)
	if err != nil {
		return nil, &RequestError{http.StatusBadRequest, fmt.Errorf("invalid content hash: %w", err)}
	}

	content, err := h.store.Fetch(r.Context(), hash)
	if errors.Is(err, interfaces.ErrContentNotFound) {
		return nil, &RequestError{http.StatusNotFound, err}
	}
	if err != nil {
		return nil, &RequestError{http.StatusBadGateway, fmt.Errorf("artifact store fetch failed: %w", err)}
	}
	return content, nil
}

// registryError maps registry errors to HTTP statuses and counts them.
func (h *Handler) registryError(err error) *RequestError {
	switch {
	case errors.Is(err, interfaces.ErrNotOwner),
		errors.Is(err, interfaces.ErrNotPendingOwner),
		errors.Is(err, interfaces.ErrNotAllowed):
		metrics.AuthFailuresTotal.Inc()
		if errors.Is(err, interfaces.ErrNotAllowed) {
			metrics.CreationFailuresTotal.WithLabelValues("not_allowed").Inc()
		}
		return &RequestError{http.StatusForbidden, err}

	case errors.Is(err, interfaces.ErrNoPendingOwner):
		return &RequestError{http.StatusConflict, err}

	case errors.Is(err, interfaces.ErrEmptyContent):
		metrics.CreationFailuresTotal.WithLabelValues("empty_content").Inc()
		return &RequestError{http.StatusBadRequest, err}

	case errors.Is(err, interfaces.ErrSlotOccupied):
		metrics.CreationFailuresTotal.WithLabelValues("slot_occupied").Inc()
		return &RequestError{http.StatusConflict, err}

	default:
		metrics.CreationFailuresTotal.WithLabelValues("internal").Inc()
		return &RequestError{http.StatusInternalServerError, err}
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		reqErr = &RequestError{http.StatusInternalServerError, err}
	}

	h.log.Debug("request failed",
		slog.Int("status", reqErr.StatusCode),
		"err", reqErr.Err)
	http.Error(w, reqErr.Error(), reqErr.StatusCode)
}
