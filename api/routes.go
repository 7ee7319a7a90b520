package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
)

// NewOpsRouter serves the gateway's operational endpoints.
func NewOpsRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/ops/health", OpsHealthHandler).Methods("GET")
	router.HandleFunc("/ops/runtime", OpsRuntimeHandler).Methods("GET")

	return router
}

func OpsHealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func OpsRuntimeHandler(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"goroutines":  runtime.NumGoroutine(),
		"heap_mb":     mem.HeapAlloc / (1 << 20),
		"num_gc":      mem.NumGC,
		"go_max_proc": runtime.GOMAXPROCS(0),
	})
}
