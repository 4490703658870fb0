package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cmwaters/gatekeeper/allowlist"
	"github.com/cmwaters/gatekeeper/pkg/account"
	"github.com/cmwaters/gatekeeper/store"
)

// Handler exposes the allow-list over HTTP:
//
//	GET  /allowed           list of members
//	GET  /allowed/{id}      membership probe, 200 or 404
//	GET  /votes/{candidate} recorded voters for a candidate, in cast order
//	POST /votes             cast a vote {"voter": ..., "candidate": ...}
//	GET  /metrics           prometheus metrics
//
// Reads come straight from the store; the vote endpoint goes through the
// Voter and maps its validation errors onto status codes.
func Handler(st store.Store, voter *allowlist.Voter) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/allowed", getMembers(st)).Methods("GET")
	router.HandleFunc("/allowed/{id}", getMember(st)).Methods("GET")
	router.HandleFunc("/votes/{candidate}", getVoters(st)).Methods("GET")
	router.HandleFunc("/votes", postVote(voter)).Methods("POST")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return router
}

func getMembers(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := st.Members()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if members == nil {
			members = []account.ID{}
		}
		writeJSON(w, members)
	}
}

func getMember(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := account.ID(mux.Vars(r)["id"])
		isMember, err := st.IsMember(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !isMember {
			http.Error(w, "account is not in the allow-list", http.StatusNotFound)
			return
		}
		writeJSON(w, id)
	}
}

func getVoters(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidate := account.ID(mux.Vars(r)["candidate"])
		voters, err := st.VotersFor(candidate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if voters == nil {
			voters = []account.ID{}
		}
		writeJSON(w, voters)
	}
}

type voteRequest struct {
	Voter     account.ID `json:"voter"`
	Candidate account.ID `json:"candidate"`
}

func postVote(voter *allowlist.Voter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req voteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Voter.Empty() || req.Candidate.Empty() {
			http.Error(w, "voter and candidate are required", http.StatusBadRequest)
			return
		}

		err := voter.VoteForAccount(req.Voter, req.Candidate)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, allowlist.ErrNotAllowedToVote):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, allowlist.ErrAlreadyAllowed),
			errors.Is(err, allowlist.ErrDuplicateVote):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
