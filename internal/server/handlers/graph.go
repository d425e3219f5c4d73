package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flocklens/flocklens/internal/core"
	"github.com/flocklens/flocklens/internal/core/engine"
	apperrors "github.com/flocklens/flocklens/internal/errors"
	"github.com/flocklens/flocklens/internal/metrics"
)

const (
	maxGroupSeeds   = 100
	maxGroupDepth   = 4
	maxLookupIDs    = 1000
	defaultMinCount = 5000
)

// GraphService is the slice of the scheduler the API handlers consume.
type GraphService interface {
	IndustryGroup(ctx context.Context, seeds []int64, maxDepth int, fanOut int) (*core.GroupResult, error)
	FetchFollowerIDs(ctx context.Context, userID int64, minCount int, transform engine.PageTransform) ([]int64, error)
	LookupUsers(ctx context.Context, ids []int64) ([]core.User, error)
}

// RunRecorder persists crawl run summaries.
type RunRecorder interface {
	RecordCrawlRun(ctx context.Context, run *core.CrawlRun) (int64, error)
}

// API carries handler dependencies.
type API struct {
	Graph GraphService
	Runs  RunRecorder
}

// GroupRequest is the POST /v1/group body.
type GroupRequest struct {
	Seeds  []int64 `json:"seeds"`
	Depth  int     `json:"depth"`
	FanOut int     `json:"fan_out"`
}

// GroupHandler runs an industry-group crawl.
func (a *API) GroupHandler(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("request body must be valid JSON"))
		return
	}

	if len(req.Seeds) == 0 {
		respondWithError(w, r, apperrors.NewValidationError("at least one seed id is required"))
		return
	}
	if len(req.Seeds) > maxGroupSeeds {
		respondWithError(w, r, apperrors.NewValidationError("too many seed ids"))
		return
	}
	if req.Depth < 0 || req.Depth > maxGroupDepth {
		respondWithError(w, r, apperrors.NewValidationError("depth must be between 0 and 4"))
		return
	}

	result, err := a.Graph.IndustryGroup(r.Context(), req.Seeds, req.Depth, req.FanOut)
	if err != nil {
		respondWithError(w, r, classifySchedulerError(r.Context(), err))
		return
	}

	metrics.RecordCrawl(len(result.InDegree), result.CompletedAt.Sub(result.StartedAt))

	if a.Runs != nil {
		run := &core.CrawlRun{
			Seeds:       result.Seeds,
			Depth:       result.Depth,
			Nodes:       len(result.InDegree),
			Requests:    result.Requests,
			StartedAt:   result.StartedAt,
			CompletedAt: result.CompletedAt,
		}
		if _, err := a.Runs.RecordCrawlRun(r.Context(), run); err != nil {
			respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to record crawl run"))
			return
		}
	}

	writeJSON(w, http.StatusOK, groupResponse(result))
}

// FollowersHandler returns follower ids for one user.
func (a *API) FollowersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		respondWithError(w, r, apperrors.NewInvalidInputError("user id must be a positive integer"))
		return
	}

	minCount := defaultMinCount
	if raw := r.URL.Query().Get("min"); raw != "" {
		minCount, err = strconv.Atoi(raw)
		if err != nil || minCount <= 0 {
			respondWithError(w, r, apperrors.NewInvalidInputError("min must be a positive integer"))
			return
		}
	}

	ids, err := a.Graph.FetchFollowerIDs(r.Context(), userID, minCount, nil)
	if err != nil {
		respondWithError(w, r, classifySchedulerError(r.Context(), err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"count":   len(ids),
		"ids":     ids,
	})
}

// LookupRequest is the POST /v1/users/lookup body.
type LookupRequest struct {
	IDs []int64 `json:"ids"`
}

// LookupHandler hydrates user records by id.
func (a *API) LookupHandler(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("request body must be valid JSON"))
		return
	}
	if len(req.IDs) > maxLookupIDs {
		respondWithError(w, r, apperrors.NewValidationError("too many ids"))
		return
	}

	users, err := a.Graph.LookupUsers(r.Context(), req.IDs)
	if err != nil {
		respondWithError(w, r, classifySchedulerError(r.Context(), err))
		return
	}
	if users == nil {
		users = []core.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(users),
		"users": users,
	})
}

func classifySchedulerError(ctx context.Context, err error) error {
	if stderrors.Is(err, engine.ErrOutOfCredentials) {
		return apperrors.NewOutOfCredentialsError("all credentials are exhausted for this operation")
	}
	return apperrors.WrapExternalService(ctx, err, "upstream social API call failed")
}

func groupResponse(result *core.GroupResult) map[string]any {
	inDegree := make(map[string]int, len(result.InDegree))
	for node, count := range result.InDegree {
		inDegree[strconv.FormatInt(node, 10)] = count
	}
	return map[string]any{
		"seeds":        result.Seeds,
		"depth":        result.Depth,
		"nodes":        len(result.InDegree),
		"requests":     result.Requests,
		"in_degree":    inDegree,
		"started_at":   result.StartedAt,
		"completed_at": result.CompletedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
