package main

import (
	"encoding/json"
	"net/http"
)

func JSONResponse(response interface{}, w http.ResponseWriter) {
	json, err := json.Marshal(response)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(json)
}

func Response(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	JSONResponse(ErrorJSON{Message: message}, w)
}

func main() {
	app := NewApp().InitDB(".env").InitRouter()
	app.Run()
}
