package bookings

import (
	"encoding/json"
	"net/http"

	"collabstudy/db"
	"collabstudy/models"
	"collabstudy/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
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

// POST /bookings — one booking per (sessionId, studentEmail). The unique
// compound index enforces it; a duplicate maps to success:false rather
// than an HTTP error.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking models.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid booking payload")
		return
	}
	if err := validate.Struct(booking); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "sessionId and studentEmail are required")
		return
	}

	result, err := h.store.Bookings.InsertOne(r.Context(), booking)
	if mongo.IsDuplicateKeyError(err) {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": false, "message": "session already booked"})
		return
	}
	if err != nil {
		h.logger.Error("booking insert failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "insertedId": result.InsertedID})
}

// GET /bookings?email= — the student's bookings with the referenced
// session joined in. A booking whose session is gone keeps no session
// field; it is not filtered out.
func (h *Handler) ListEnriched(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	bookings, err := utils.FindAndDecode[bson.M](r.Context(), h.store.Bookings, bson.M{"studentEmail": email})
	if err != nil {
		h.logger.Error("booking list failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	ids := []primitive.ObjectID{}
	for _, b := range bookings {
		sid, _ := b["sessionId"].(string)
		if oid, err := primitive.ObjectIDFromHex(sid); err == nil {
			ids = append(ids, oid)
		}
	}

	sessionsByID := map[string]bson.M{}
	if len(ids) > 0 {
		sessions, err := utils.FindAndDecode[bson.M](r.Context(), h.store.Sessions, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			h.logger.Error("booking session join failed", zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to list bookings")
			return
		}
		for _, s := range sessions {
			if oid, ok := s["_id"].(primitive.ObjectID); ok {
				sessionsByID[oid.Hex()] = s
			}
		}
	}

	for _, b := range bookings {
		sid, _ := b["sessionId"].(string)
		if session, ok := sessionsByID[sid]; ok {
			b["session"] = session
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}

// GET /bookings/student?email= — the raw booking documents.
func (h *Handler) ListByStudent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email := r.URL.Query().Get("email")
	if email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	bookings, err := utils.FindAndDecode[models.Booking](r.Context(), h.store.Bookings, bson.M{"studentEmail": email})
	if err != nil {
		h.logger.Error("booking list failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, bookings)
}
