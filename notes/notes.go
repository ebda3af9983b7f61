package notes

import (
	"encoding/json"
	"net/http"
	"time"

	"collabstudy/db"
	"collabstudy/models"
	"collabstudy/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var validate = validator.New()

type Handler struct {
	store  *db.Store
	logger *zap.Logger
}

func NewHandler(store *db.Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// POST /notes — createdAt is stamped server-side; whatever the client
// sent for it is discarded.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var note models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid note payload")
		return
	}
	if err := validate.Struct(note); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}
	note.CreatedAt = time.Now().UTC()

	result, err := h.store.Notes.InsertOne(r.Context(), note)
	if err != nil {
		h.logger.Error("note insert failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create note")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"insertedId": result.InsertedID})
}

// GET /notes/:email
func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	notes, err := utils.FindAndDecode[models.Note](r.Context(), h.store.Notes,
		bson.M{"email": ps.ByName("email")})
	if err != nil {
		h.logger.Error("note list failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, notes)
}

// PATCH /notes/:id — unconditional field-set merge of the client payload.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid update payload")
		return
	}

	result, err := h.store.Notes.UpdateByID(r.Context(), id, bson.M{"$set": fields})
	if err != nil {
		h.logger.Error("note update failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update note")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"matchedCount":  result.MatchedCount,
		"modifiedCount": result.ModifiedCount,
	})
}

// DELETE /notes/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	result, err := h.store.Notes.DeleteOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		h.logger.Error("note delete failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": result.DeletedCount})
}
