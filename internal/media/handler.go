package media

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"microblog/internal/common"
	"microblog/internal/dbmysql"
)

// 32 MB, matching the multipart in-memory threshold.
const maxUploadMemory = 32 << 20

type Handler struct {
	Store  *DiskStore
	Repo   Medias
	Logger *logrus.Logger
}

func NewHandler(store *DiskStore, repo Medias, logger *logrus.Logger) *Handler {
	return &Handler{Store: store, Repo: repo, Logger: logger}
}

type uploadResponse struct {
	Result  bool  `json:"result"`
	MediaID int64 `json:"media_id"`
}

// Upload handles POST /api/medias: write the file to disk, then persist the
// media row owned by the uploader.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.CurrentUser(r.Context())
	if !ok {
		common.WriteError(w, h.Logger, common.Unauthorizedf("authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		common.WriteError(w, h.Logger, common.Validationf("invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, h.Logger, common.Validationf("file field is required"))
		return
	}
	defer file.Close()

	path, err := h.Store.Save(header.Filename, file)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	media := &dbmysql.Media{Path: path, UploaderID: viewer.ID}
	if err := h.Repo.CreateMedia(r.Context(), media); err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	h.Logger.WithFields(logrus.Fields{
		"media_id": media.ID,
		"uploader": viewer.ID,
		"path":     path,
	}).Info("media uploaded")

	common.WriteJSON(w, http.StatusOK, uploadResponse{Result: true, MediaID: media.ID})
}
