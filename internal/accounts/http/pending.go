package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/studyconnect/accounts/internal/accounts/service"
	"github.com/studyconnect/accounts/pkg/accountsdk"
	"github.com/studyconnect/accounts/pkg/httpx"
	"github.com/studyconnect/accounts/pkg/slogx"
)

type PendingHandler struct {
	AccountService *service.AccountService
	Feed           *service.PendingFeed
}

// HandleList godoc
//
//	@Summary		Pending Accounts Endpoint
//	@Description	Returns the admin approval queue, newest registration first.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	accountsdk.PendingListResponse	"accounts"
//	@Failure		401	{object}	accountsdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	accountsdk.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/accounts/pending [get].
func (h *PendingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pending, err := h.AccountService.ListPending(ctx)
	if err != nil {
		mapServiceError(err).WriteError(w)
		return
	}

	out := accountsdk.PendingListResponse{
		Accounts: make([]accountsdk.Account, 0, len(pending)),
	}
	for _, a := range pending {
		out.Accounts = append(out.Accounts, toSDKAccount(a))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleWatch godoc
//
//	@Summary		Pending Accounts Watch Endpoint
//	@Description	Server-sent event stream of the approval queue. Emits the full queue as a "pending" event immediately on connect and again after every change, so the admin console never polls.
//	@Tags			Accounts
//	@Produce		text/event-stream
//	@Success		200	{string}	string						"SSE stream of pending queue snapshots"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	accountsdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/accounts/pending/watch [get].
func (h *PendingHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		accountsdk.ErrServerError.WriteError(w)
		return
	}

	updates, cancel := h.Feed.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Initial snapshot, then one per change notification.
	if err := h.writeSnapshot(w, r); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			log.Debug("pending watch closed by client")
			return
		case <-updates:
			if err := h.writeSnapshot(w, r); err != nil {
				log.Debug("pending watch write failed", "err", err)
				return
			}
			flusher.Flush()
		}
	}
}

func (h *PendingHandler) writeSnapshot(w http.ResponseWriter, r *http.Request) error {
	pending, err := h.AccountService.ListPending(r.Context())
	if err != nil {
		return err
	}

	out := accountsdk.PendingListResponse{
		Accounts: make([]accountsdk.Account, 0, len(pending)),
	}
	for _, a := range pending {
		out.Accounts = append(out.Accounts, toSDKAccount(a))
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: pending\ndata: %s\n\n", payload)
	return err
}
