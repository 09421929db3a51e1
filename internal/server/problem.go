package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HerbHall/adminlist/internal/listcontroller"
	"github.com/HerbHall/adminlist/internal/listparams"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound   = "https://adminlist.dev/problems/not-found"
	ProblemTypeBadRequest = "https://adminlist.dev/problems/bad-request"
	ProblemTypeInternal   = "https://adminlist.dev/problems/internal-error"
	ProblemTypeUpstream   = "https://adminlist.dev/problems/upstream-error"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func problem(typ string, status int) func(w http.ResponseWriter, detail, instance string) {
	return func(w http.ResponseWriter, detail, instance string) {
		WriteProblem(w, Problem{
			Type:     typ,
			Title:    http.StatusText(status),
			Status:   status,
			Detail:   detail,
			Instance: instance,
		})
	}
}

// Problem writers for the statuses the API returns.
var (
	NotFound      = problem(ProblemTypeNotFound, http.StatusNotFound)
	BadRequest    = problem(ProblemTypeBadRequest, http.StatusBadRequest)
	InternalError = problem(ProblemTypeInternal, http.StatusInternalServerError)
	BadGateway    = problem(ProblemTypeUpstream, http.StatusBadGateway)
)

// writeError maps a domain error to a problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, listcontroller.ErrMissingResource),
		errors.Is(err, listcontroller.ErrInvalidFilter),
		errors.Is(err, listparams.ErrMissingResource):
		BadRequest(w, err.Error(), r.URL.Path)
	case errors.Is(err, errSessionNotFound):
		NotFound(w, err.Error(), r.URL.Path)
	default:
		InternalError(w, err.Error(), r.URL.Path)
	}
}
