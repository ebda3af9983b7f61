package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

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

// GET /users/:email/role
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	email := ps.ByName("email")

	var user models.User
	err := h.store.Users.FindOne(r.Context(), bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("user role lookup failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get user role")
		return
	}

	role := user.Role
	if role == "" {
		role = "user"
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"role": role})
}

// POST /users — insert-or-no-op keyed on email. The unique index on email
// makes the insert conditional; a duplicate comes back as inserted:false,
// not as an error.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	if err := validate.Struct(user); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}

	result, err := h.store.Users.InsertOne(r.Context(), user)
	if mongo.IsDuplicateKeyError(err) {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "user already exists", "inserted": false})
		return
	}
	if err != nil {
		h.logger.Error("user insert failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"inserted": true, "insertedId": result.InsertedID})
}

// GET /users?search= — case-insensitive substring match on name or email.
// An empty search term matches everyone.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter = bson.M{"$or": []bson.M{
			{"name": pattern},
			{"email": pattern},
		}}
	}

	users, err := utils.FindAndDecode[models.User](r.Context(), h.store.Users, filter)
	if err != nil {
		h.logger.Error("user search failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// PATCH /users/role/:id — replaces the role field. No check that the id
// exists; a miss surfaces as matchedCount 0.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid role payload")
		return
	}

	result, err := h.store.Users.UpdateByID(r.Context(), id, bson.M{"$set": bson.M{"role": body.Role}})
	if err != nil {
		h.logger.Error("user role update failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update role")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"matchedCount":  result.MatchedCount,
		"modifiedCount": result.ModifiedCount,
	})
}

// DELETE /users/:id — deleting an absent id reports deletedCount 0.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	result, err := h.store.Users.DeleteOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		h.logger.Error("user delete failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deletedCount": result.DeletedCount})
}
