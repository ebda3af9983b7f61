package sessions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"collabstudy/db"
	"collabstudy/models"
	"collabstudy/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var validate = validator.New()

// approvedListLimit caps the showcase list on the public landing surface.
const approvedListLimit = 6

type Handler struct {
	store  *db.Store
	logger *zap.Logger
}

func NewHandler(store *db.Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// POST /sessions — new sessions start out pending.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var session models.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid session payload")
		return
	}
	if err := validate.StructPartial(session, "TutorEmail"); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "tutorEmail is required")
		return
	}
	if session.Status == "" {
		session.Status = models.SessionPending
	}

	result, err := h.store.Sessions.InsertOne(r.Context(), session)
	if err != nil {
		h.logger.Error("session insert failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"insertedId": result.InsertedID})
}

// GET /sessions
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.respondList(w, r, bson.M{})
}

// GET /sessions/available
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.respondList(w, r, bson.M{"status": models.SessionApproved})
}

// GET /sessions/approved — approved sessions capped at six, stored order.
func (h *Handler) ListApproved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sessions, err := utils.FindAndDecode[models.Session](r.Context(), h.store.Sessions,
		bson.M{"status": models.SessionApproved}, options.Find().SetLimit(approvedListLimit))
	if err != nil {
		h.logger.Error("approved session list failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sessions)
}

// GET /sessions/:id — only approved sessions are visible here. A missing
// or non-approved session responds with a JSON null body, not an error.
func (h *Handler) GetApproved(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var session models.Session
	err = h.store.Sessions.FindOne(r.Context(), bson.M{"_id": id, "status": models.SessionApproved}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		h.logger.Error("session lookup failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, session)
}

// GET /sessions/tutor/:email
func (h *Handler) ListByTutor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respondList(w, r, bson.M{"tutorEmail": ps.ByName("email")})
}

// GET /sessions/tutor/approved/:email
func (h *Handler) ListApprovedByTutor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respondList(w, r, bson.M{"tutorEmail": ps.ByName("email"), "status": models.SessionApproved})
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, filter bson.M) {
	sessions, err := utils.FindAndDecode[models.Session](r.Context(), h.store.Sessions, filter)
	if err != nil {
		h.logger.Error("session list failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sessions)
}

// GET /tutors — derived roster grouped by tutorEmail over approved
// sessions, in first-seen order.
func (h *Handler) ListTutors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sessions, err := utils.FindAndDecode[models.Session](r.Context(), h.store.Sessions,
		bson.M{"status": models.SessionApproved})
	if err != nil {
		h.logger.Error("tutor roster scan failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to list tutors")
		return
	}

	tutors := []*models.Tutor{}
	index := map[string]int{}
	for _, s := range sessions {
		if i, seen := index[s.TutorEmail]; seen {
			tutors[i].SessionCount++
			continue
		}
		index[s.TutorEmail] = len(tutors)
		tutors = append(tutors, &models.Tutor{
			TutorEmail:   s.TutorEmail,
			TutorName:    s.TutorName,
			SessionCount: 1,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, tutors)
}

// PATCH /approve-session/:id — pending -> approved. A paid session keeps
// the supplied price coerced to a number; a free one is forced to 0.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var body struct {
		IsPaid bool            `json:"isPaid"`
		Price  json.RawMessage `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid approval payload")
		return
	}

	price := 0.0
	if body.IsPaid {
		price = coercePrice(body.Price)
	}

	h.setFields(w, r, id, bson.M{
		"status": models.SessionApproved,
		"isPaid": body.IsPaid,
		"price":  price,
	})
}

// PATCH /update-session/:id — arbitrary field replacement, bypasses the
// status lifecycle.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid update payload")
		return
	}
	h.setFields(w, r, id, fields)
}

// PATCH /reject-session/:id
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	h.setFields(w, r, id, bson.M{"status": models.SessionRejected})
}

// PATCH /sessions/request/:id — tutor asks for reconsideration; the
// session goes back to pending from either terminal state.
func (h *Handler) RequestReconsideration(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	h.setFields(w, r, id, bson.M{"status": models.SessionPending})
}

func (h *Handler) setFields(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, fields interface{}) {
	result, err := h.store.Sessions.UpdateByID(r.Context(), id, bson.M{"$set": fields})
	if err != nil {
		h.logger.Error("session update failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update session")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"matchedCount":  result.MatchedCount,
		"modifiedCount": result.ModifiedCount,
	})
}

// DELETE /delete-session/:id — the filter includes status=approved, so
// deleting a pending or rejected session affects zero documents and still
// responds 200.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	result, err := h.store.Sessions.DeleteOne(r.Context(), bson.M{"_id": id, "status": models.SessionApproved})
	if err != nil {
		h.logger.Error("session delete failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": result.DeletedCount})
}

// coercePrice accepts a JSON number or a numeric string; anything else
// counts as 0.
func coercePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	}
	return 0
}
