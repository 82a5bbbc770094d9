// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Flik blog. Handlers
// are grouped by concern (public pages, JSON API, admin) and receive their
// dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// maxJSONBody caps request bodies decoded by readFields.
const maxJSONBody = 1 << 20

var errBadBody = errors.New("cuerpo de la solicitud inválido")

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode json response failed", "error", err)
	}
}

// writeError writes a JSON {"error": msg} response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// isForm reports whether the request body is an HTML form submission.
func isForm(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// readFields reads the named string fields from a JSON object body or from
// an HTML form. Missing fields come back as "" and values are trimmed.
func readFields(r *http.Request, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))

	if isForm(r) {
		for _, n := range names {
			out[n] = strings.TrimSpace(r.FormValue(n))
		}
		return out, nil
	}

	var body map[string]any
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	for _, n := range names {
		switch v := body[n].(type) {
		case string:
			out[n] = strings.TrimSpace(v)
		case float64, bool:
			out[n] = fmt.Sprint(v)
		}
	}
	return out, nil
}

// missing reports whether any of the named fields is empty.
func missing(fields map[string]string, names ...string) bool {
	for _, n := range names {
		if fields[n] == "" {
			return true
		}
	}
	return false
}

// respondForm finishes a form submission with a redirect back to the page
// it came from, or writes v as JSON for scripted clients. Only the path of
// the referrer is kept so the redirect never leaves the site.
func respondForm(w http.ResponseWriter, r *http.Request, status int, v any) {
	if isForm(r) && status < http.StatusBadRequest {
		if ref, err := url.Parse(r.Referer()); err == nil && strings.HasPrefix(ref.Path, "/") && !strings.HasPrefix(ref.Path, "//") {
			http.Redirect(w, r, ref.RequestURI(), http.StatusSeeOther)
			return
		}
	}
	writeJSON(w, status, v)
}
