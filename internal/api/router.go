package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"missing-kids/internal/kid"

	"github.com/gorilla/mux"
)

type KidFinder interface {
	FindByCaseID(ctx context.Context, caseID int64) (*kid.Kid, error)
}

func NewRouter(kids KidFinder, logger *log.Logger) *mux.Router {
	if logger == nil {
		logger = log.Default()
	}

	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/kids/{caseId:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		caseID, err := strconv.ParseInt(mux.Vars(req)["caseId"], 10, 64)
		if err != nil {
			http.Error(w, "invalid case id", http.StatusBadRequest)
			return
		}

		k, err := kids.FindByCaseID(req.Context(), caseID)
		if errors.Is(err, kid.ErrNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Printf("api: failed loading case %d: %v", caseID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(k); err != nil {
			logger.Printf("api: failed writing case %d: %v", caseID, err)
		}
	}).Methods(http.MethodGet)

	return r
}
