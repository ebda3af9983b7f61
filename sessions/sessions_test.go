package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"collabstudy/db"
	"collabstudy/db/dbtest"
	"collabstudy/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func newHandler(sessions db.Collection) *Handler {
	return NewHandler(&db.Store{Sessions: sessions}, zap.NewNop())
}

func idParam(id string) httprouter.Params {
	return httprouter.Params{{Key: "id", Value: id}}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateDefaultsStatusToPending(t *testing.T) {
	var inserted models.Session
	h := newHandler(&dbtest.Collection{
		InsertOneFn: func(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error) {
			inserted = document.(models.Session)
			return &mongo.InsertOneResult{InsertedID: primitive.NewObjectID()}, nil
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions",
		strings.NewReader(`{"title":"Algebra","tutorEmail":"t@example.com"}`))
	h.Create(rec, req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SessionPending, inserted.Status)
}

func TestCreateMissingTutorEmailIs400(t *testing.T) {
	h := newHandler(&dbtest.Collection{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"title":"Algebra"}`))
	h.Create(rec, req, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApprovePaidCoercesStringPrice(t *testing.T) {
	id := primitive.NewObjectID()
	var gotUpdate interface{}
	h := newHandler(&dbtest.Collection{
		UpdateByIDFn: func(ctx context.Context, _, update interface{}) (*mongo.UpdateResult, error) {
			gotUpdate = update
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/approve-session/"+id.Hex(),
		strings.NewReader(`{"isPaid":true,"price":"50"}`))
	h.Approve(rec, req, idParam(id.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	set := gotUpdate.(bson.M)["$set"].(bson.M)
	assert.Equal(t, models.SessionApproved, set["status"])
	assert.Equal(t, true, set["isPaid"])
	assert.Equal(t, 50.0, set["price"])
}

func TestApproveUnpaidForcesZeroPrice(t *testing.T) {
	id := primitive.NewObjectID()
	var gotUpdate interface{}
	h := newHandler(&dbtest.Collection{
		UpdateByIDFn: func(ctx context.Context, _, update interface{}) (*mongo.UpdateResult, error) {
			gotUpdate = update
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/approve-session/"+id.Hex(),
		strings.NewReader(`{"isPaid":false,"price":"99"}`))
	h.Approve(rec, req, idParam(id.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	set := gotUpdate.(bson.M)["$set"].(bson.M)
	assert.Equal(t, 0.0, set["price"])
}

func TestCoercePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{`50`, 50},
		{`"50"`, 50},
		{`"12.5"`, 12.5},
		{`" 7 "`, 7},
		{`"free"`, 0},
		{`null`, 0},
		{`true`, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, coercePrice(json.RawMessage(tc.raw)), "raw=%s", tc.raw)
	}
}

func TestRejectSetsStatusRejected(t *testing.T) {
	var gotUpdate interface{}
	h := newHandler(&dbtest.Collection{
		UpdateByIDFn: func(ctx context.Context, _, update interface{}) (*mongo.UpdateResult, error) {
			gotUpdate = update
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		},
	})

	id := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	h.Reject(rec, httptest.NewRequest(http.MethodPatch, "/reject-session/"+id.Hex(), nil), idParam(id.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	set := gotUpdate.(bson.M)["$set"].(bson.M)
	assert.Equal(t, models.SessionRejected, set["status"])
}

func TestRequestReconsiderationResetsToPending(t *testing.T) {
	var gotUpdate interface{}
	h := newHandler(&dbtest.Collection{
		UpdateByIDFn: func(ctx context.Context, _, update interface{}) (*mongo.UpdateResult, error) {
			gotUpdate = update
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		},
	})

	id := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	h.RequestReconsideration(rec, httptest.NewRequest(http.MethodPatch, "/sessions/request/"+id.Hex(), nil), idParam(id.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	set := gotUpdate.(bson.M)["$set"].(bson.M)
	assert.Equal(t, models.SessionPending, set["status"])
}

func TestDeleteFiltersOnApprovedStatus(t *testing.T) {
	id := primitive.NewObjectID()
	var gotFilter bson.M
	h := newHandler(&dbtest.Collection{
		DeleteOneFn: func(ctx context.Context, filter interface{}) (*mongo.DeleteResult, error) {
			gotFilter = filter.(bson.M)
			return &mongo.DeleteResult{DeletedCount: 0}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodDelete, "/delete-session/"+id.Hex(), nil), idParam(id.Hex()))

	// a pending session matches nothing and the call still succeeds
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, gotFilter["_id"])
	assert.Equal(t, models.SessionApproved, gotFilter["status"])
	assert.Equal(t, float64(0), decodeBody(t, rec)["deletedCount"])
}

func TestGetApprovedMissingRespondsNull(t *testing.T) {
	h := newHandler(&dbtest.Collection{})

	id := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	h.GetApproved(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id.Hex(), nil), idParam(id.Hex()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestGetApprovedReturnsSession(t *testing.T) {
	id := primitive.NewObjectID()
	var gotFilter bson.M
	h := newHandler(&dbtest.Collection{
		FindOneFn: func(ctx context.Context, filter interface{}) *mongo.SingleResult {
			gotFilter = filter.(bson.M)
			return dbtest.Doc(models.Session{ID: id, TutorEmail: "t@example.com", Status: models.SessionApproved})
		},
	})

	rec := httptest.NewRecorder()
	h.GetApproved(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id.Hex(), nil), idParam(id.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SessionApproved, gotFilter["status"])
	assert.Equal(t, "t@example.com", decodeBody(t, rec)["tutorEmail"])
}

func TestListApprovedCapsAtSix(t *testing.T) {
	var gotOpts []*options.FindOptions
	var gotFilter bson.M
	h := newHandler(&dbtest.Collection{
		FindFn: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
			gotFilter = filter.(bson.M)
			gotOpts = opts
			return dbtest.Docs()
		},
	})

	rec := httptest.NewRecorder()
	h.ListApproved(rec, httptest.NewRequest(http.MethodGet, "/sessions/approved", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SessionApproved, gotFilter["status"])
	require.Len(t, gotOpts, 1)
	require.NotNil(t, gotOpts[0].Limit)
	assert.Equal(t, int64(6), *gotOpts[0].Limit)
}

func TestListTutorsGroupsInFirstSeenOrder(t *testing.T) {
	emails := []string{"a@x.io", "b@x.io", "a@x.io", "c@x.io", "b@x.io", "a@x.io"}
	docs := make([]interface{}, 0, len(emails))
	for _, e := range emails {
		docs = append(docs, models.Session{TutorEmail: e, TutorName: strings.ToUpper(e), Status: models.SessionApproved})
	}

	h := newHandler(&dbtest.Collection{
		FindFn: func(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
			return dbtest.Docs(docs...)
		},
	})

	rec := httptest.NewRecorder()
	h.ListTutors(rec, httptest.NewRequest(http.MethodGet, "/tutors", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var tutors []models.Tutor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tutors))
	require.Len(t, tutors, 3)
	assert.Equal(t, "a@x.io", tutors[0].TutorEmail)
	assert.Equal(t, 3, tutors[0].SessionCount)
	assert.Equal(t, "b@x.io", tutors[1].TutorEmail)
	assert.Equal(t, 2, tutors[1].SessionCount)
	assert.Equal(t, "c@x.io", tutors[2].TutorEmail)
	assert.Equal(t, 1, tutors[2].SessionCount)
}

func TestUpdateSetsArbitraryFields(t *testing.T) {
	var gotUpdate interface{}
	h := newHandler(&dbtest.Collection{
		UpdateByIDFn: func(ctx context.Context, _, update interface{}) (*mongo.UpdateResult, error) {
			gotUpdate = update
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		},
	})

	id := primitive.NewObjectID()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/update-session/"+id.Hex(),
		strings.NewReader(`{"title":"New Title","duration":"2h"}`))
	h.Update(rec, req, idParam(id.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	set := gotUpdate.(bson.M)["$set"].(map[string]interface{})
	assert.Equal(t, "New Title", set["title"])
	assert.Equal(t, "2h", set["duration"])
}
