package httputil

import "net/http"

// JSONAPIHeaders returns the headers sent with every search API call.
func JSONAPIHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Accept-Encoding", "gzip, br")
	h.Set("User-Agent", "phonescope/1.0")
	return h
}
