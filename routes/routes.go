package routes

import (
	"net/http"

	"collabstudy/bookings"
	"collabstudy/middleware"
	"collabstudy/notes"
	"collabstudy/ratelim"
	"collabstudy/reviews"
	"collabstudy/sessions"
	"collabstudy/users"

	"github.com/julienschmidt/httprouter"
)

func AddUserRoutes(router *httprouter.Router, h *users.Handler, auth *middleware.Auth, rl *ratelim.RateLimiter) {
	router.GET("/users/:email/role", rl.Limit(h.GetRole))
	router.POST("/users", rl.Limit(h.Create))
	router.GET("/users", auth.Authenticate(h.List))
	router.PATCH("/users/role/:id", auth.Authenticate(h.UpdateRole))
	router.DELETE("/users/:id", auth.Authenticate(h.Delete))
}

func AddSessionRoutes(router *httprouter.Router, h *sessions.Handler, auth *middleware.Auth, rl *ratelim.RateLimiter) {
	router.GET("/sessions", auth.Authenticate(h.List))
	router.POST("/sessions", auth.Authenticate(h.Create))

	router.PATCH("/approve-session/:id", auth.Authenticate(h.Approve))
	router.PATCH("/update-session/:id", auth.Authenticate(h.Update))
	router.PATCH("/reject-session/:id", auth.Authenticate(h.Reject))
	router.PATCH("/sessions/request/:id", auth.Authenticate(h.RequestReconsideration))
	router.DELETE("/delete-session/:id", auth.Authenticate(h.Delete))

	router.GET("/tutors", rl.Limit(h.ListTutors))

	// httprouter rejects literal and wildcard siblings under the same
	// prefix, so the literal GET /sessions subpaths (available, approved,
	// tutor) are dispatched off the wildcard segments here.
	available := rl.Limit(h.ListAvailable)
	approved := rl.Limit(h.ListApproved)
	byID := auth.Authenticate(h.GetApproved)
	router.GET("/sessions/:id", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		switch ps.ByName("id") {
		case "available":
			available(w, r, ps)
		case "approved":
			approved(w, r, ps)
		default:
			byID(w, r, ps)
		}
	})

	byTutor := auth.Authenticate(h.ListByTutor)
	router.GET("/sessions/:id/:email", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("id") != "tutor" {
			http.NotFound(w, r)
			return
		}
		byTutor(w, r, ps)
	})

	approvedByTutor := auth.Authenticate(h.ListApprovedByTutor)
	router.GET("/sessions/:id/:email/:leaf", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("id") != "tutor" || ps.ByName("email") != "approved" {
			http.NotFound(w, r)
			return
		}
		approvedByTutor(w, r, httprouter.Params{{Key: "email", Value: ps.ByName("leaf")}})
	})
}

func AddReviewRoutes(router *httprouter.Router, h *reviews.Handler, rl *ratelim.RateLimiter) {
	router.GET("/reviews/:sessionId", rl.Limit(h.ListBySession))
	router.POST("/reviews", rl.Limit(h.Create))
}

func AddBookingRoutes(router *httprouter.Router, h *bookings.Handler, auth *middleware.Auth) {
	router.GET("/bookings", auth.Authenticate(h.ListEnriched))
	router.GET("/bookings/student", auth.Authenticate(h.ListByStudent))
	router.POST("/bookings", auth.Authenticate(h.Create))
}

func AddNoteRoutes(router *httprouter.Router, h *notes.Handler, auth *middleware.Auth) {
	router.GET("/notes/:email", auth.Authenticate(h.ListByOwner))
	router.POST("/notes", auth.Authenticate(h.Create))
	router.PATCH("/notes/:id", auth.Authenticate(h.Update))
	router.DELETE("/notes/:id", auth.Authenticate(h.Delete))
}
