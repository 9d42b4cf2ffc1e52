package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/util"
)

// userEvent is an identity-provider webhook delivery.
type userEvent struct {
	Type string `json:"type"`
	Data struct {
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		ImageURL  string `json:"image_url"`
	} `json:"data"`
}

// PostUserWebhook mirrors user.created, user.updated and user.deleted events
// into the users table. Other event types are acknowledged and ignored.
func (h *handlers) PostUserWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", "failed to read body")
		return
	}
	if int64(len(body)) > h.maxBody {
		util.WriteError(w, http.StatusRequestEntityTooLarge, "invalid_request", "body too large")
		return
	}
	if err := h.Webhooks.Verify(r, body); err != nil {
		util.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid webhook signature")
		return
	}

	var evt userEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if evt.Data.ID == "" {
		util.WriteError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	switch evt.Type {
	case "user.created", "user.updated":
		u := &store.User{
			ExternalID: evt.Data.ID,
			Name:       strings.TrimSpace(evt.Data.FirstName + " " + evt.Data.LastName),
			ImageURL:   evt.Data.ImageURL,
		}
		if err := h.Users.UpsertUser(r.Context(), u); err != nil {
			h.fail(w, r, err, "user")
			return
		}
	case "user.deleted":
		err := h.Users.DeleteUserByExternalID(r.Context(), evt.Data.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.fail(w, r, err, "user")
			return
		}
	default:
		h.Log.WithField("type", evt.Type).Debug("webhook: ignoring event")
	}
	util.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
