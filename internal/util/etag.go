package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"golang.org/x/crypto/sha3"
)

// Canonicalize marshals v and applies RFC 8785 (JCS) canonicalization.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicaljson: marshal: %w", err)
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicaljson: transform: %w", err)
	}
	return out, nil
}

// ETag returns a weak entity tag over the canonical JSON form of v, so that
// equal documents get equal tags regardless of key order.
func ETag(v any) (string, error) {
	canon, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(canon)
	return `W/"` + hex.EncodeToString(sum[:16]) + `"`, nil
}

// WriteJSONWithETag writes v with an ETag header, answering 304 when the
// request's If-None-Match already carries that tag.
func WriteJSONWithETag(w http.ResponseWriter, r *http.Request, v any) {
	tag, err := ETag(v)
	if err != nil {
		WriteJSON(w, http.StatusOK, v)
		return
	}
	w.Header().Set("ETag", tag)
	if matchesETag(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func matchesETag(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, cand := range strings.Split(header, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || cand == tag || "W/"+cand == tag {
			return true
		}
	}
	return false
}
