package dashboard

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"microblog/internal/common"
)

type Usecase interface {
	Overview(ctx context.Context) (*Stats, error)
}

type Handlers struct {
	Svc    Usecase
	Logger *logrus.Logger
}

func NewHandlers(svc Usecase, logger *logrus.Logger) *Handlers {
	return &Handlers{Svc: svc, Logger: logger}
}

type overviewResponse struct {
	Result bool   `json:"result"`
	Stats  *Stats `json:"stats"`
}

// Overview handles GET /api/dashboard.
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Overview(r.Context())
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, overviewResponse{Result: true, Stats: stats})
}
