package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type modelTrainer interface {
	TrainAll(ctx context.Context, userID string) error
	Forget(ctx context.Context, userID string) error
}

type taskSubmitter interface {
	Submit(ctx context.Context, fn func()) error
}

// AdminHandler exposes operator actions on forecast models.
type AdminHandler struct {
	trainer modelTrainer
	pool    taskSubmitter
}

func NewAdminHandler(trainer modelTrainer, pool taskSubmitter) *AdminHandler {
	return &AdminHandler{trainer: trainer, pool: pool}
}

// Train retrains every metric for the user, ignoring the retrain interval.
// It runs on the training pool and waits for the result, so manual runs share
// the worker bound with scheduled ones.
func (h *AdminHandler) Train(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	done := make(chan error, 1)
	err := h.pool.Submit(r.Context(), func() {
		done <- h.trainer.TrainAll(r.Context(), userID)
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "training workers busy")
		return
	}
	if err := <-done; err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "models trained"})
}

func (h *AdminHandler) ForgetModels(w http.ResponseWriter, r *http.Request) {
	if err := h.trainer.Forget(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "models deleted"})
}
