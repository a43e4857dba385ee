// Command searchindex runs a local stand-in for the search index API.
// It accepts partial score updates and serves them back for inspection.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

type store struct {
	mu      sync.RWMutex
	records map[string]map[string]json.RawMessage
}

func (s *store) partialUpdate(w http.ResponseWriter, r *http.Request) {
	index, objectID := r.PathValue("index"), r.PathValue("objectID")

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"message":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.records[index] == nil {
		s.records[index] = make(map[string]json.RawMessage)
	}
	s.records[index][objectID] = body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"taskID":1,"objectID":"` + objectID + `"}`)); err != nil {
		log.Printf("[Search Index] write error: %v", err)
	}
	log.Printf("[Search Index] %s %s - 200 OK", r.Method, r.URL.Path)
}

func (s *store) get(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	record, ok := s.records[r.PathValue("index")][r.PathValue("objectID")]
	s.mu.RUnlock()

	if !ok {
		http.Error(w, `{"message":"ObjectID does not exist"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(record); err != nil {
		log.Printf("[Search Index] write error: %v", err)
	}
}

func main() {
	s := &store{records: make(map[string]map[string]json.RawMessage)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /1/indexes/{index}/{objectID}/partial", s.partialUpdate)
	mux.HandleFunc("GET /1/indexes/{index}/{objectID}", s.get)
	mux.HandleFunc("GET /1/isalive", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(`{"message":"server is alive"}`)); err != nil {
			log.Printf("[Search Index] health write error: %v", err)
		}
	})

	log.Println("Mock search index running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
