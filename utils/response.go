package utils

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes payload as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// RespondError writes a {success:false, message} failure body.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// RespondSuccess writes a {success:true, message} body merged with any extra
// fields.
func RespondSuccess(w http.ResponseWriter, status int, message string, extra map[string]interface{}) {
	payload := map[string]interface{}{
		"success": true,
	}
	if message != "" {
		payload["message"] = message
	}
	for k, v := range extra {
		payload[k] = v
	}
	RespondJSON(w, status, payload)
}
