// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package errfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// QueryError is a failed search together with the query that caused it.
type QueryError struct {
	Status string
	Body   []byte
	Query  []byte
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("search failed: %s\nError: %s\n\nQuery:\n%s", e.Status, string(e.Body), prettyJSON(e.Query))
}

// FormatQueryError builds a *QueryError from the response status and body.
// The query is indented when it is valid JSON and included raw otherwise.
func FormatQueryError(status string, body []byte, queryJSON []byte) error {
	return &QueryError{Status: status, Body: body, Query: queryJSON}
}

func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil || buf.Len() == 0 {
		return string(raw)
	}
	return buf.String()
}
