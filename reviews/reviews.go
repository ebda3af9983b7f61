package reviews

import (
	"encoding/json"
	"net/http"

	"collabstudy/db"
	"collabstudy/models"
	"collabstudy/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Handler struct {
	store  *db.Store
	logger *zap.Logger
}

func NewHandler(store *db.Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// POST /reviews — open and unvalidated; nothing checks that sessionId
// points at a real session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid review payload")
		return
	}

	result, err := h.store.Reviews.InsertOne(r.Context(), review)
	if err != nil {
		h.logger.Error("review insert failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create review")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"insertedId": result.InsertedID})
}

// GET /reviews/:sessionId — most recent first.
func (h *Handler) ListBySession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reviews, err := utils.FindAndDecode[models.Review](r.Context(), h.store.Reviews,
		bson.M{"sessionId": ps.ByName("sessionId")},
		options.Find().SetSort(bson.D{{Key: "reviewDate", Value: -1}}))
	if err != nil {
		h.logger.Error("review list failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reviews)
}
