package httpapi

import "net/http"

const apiVersion = "0.1.0"

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "MyDutch API",
		"version": apiVersion,
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "mydutch-backend",
		"version": apiVersion,
	})
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"api_version": "v1",
		"features": map[string]string{
			"authentication": "available",
			"object_storage": "available",
			"chat_agent":     "available",
		},
	})
}
