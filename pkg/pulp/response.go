package pulp

import (
	"errors"

	"github.com/contentops-hq/pulp-courier/pkg/httpclient"
)

var errResultsNotArray = errors.New(`"results" is not an array`)

// ParseJSONResponse validates and decodes an HTTP response body. When
// checkSuccess is true the status code must be 2xx. The operation label
// only feeds error messages. The decoded value is returned unchanged,
// wrapped in a Document.
func ParseJSONResponse(resp httpclient.Response, operation string, checkSuccess bool) (Document, error) {
	if checkSuccess {
		if code := resp.StatusCode(); code < 200 || code >= 300 {
			return Document{}, &ResponseError{Operation: operation, StatusCode: code}
		}
	}

	doc, err := DecodeDocument(resp.Body())
	if err != nil {
		return Document{}, &ResponseError{Operation: operation, Err: err}
	}
	return doc, nil
}

// ExtractTaskHref pulls the "task" href out of a spawn-task response
// (e.g. the 202 body returned by content-modifying endpoints).
func ExtractTaskHref(resp httpclient.Response, operation string) (string, error) {
	doc, err := ParseJSONResponse(resp, operation, true)
	if err != nil {
		return "", err
	}

	href, ok := doc.StringField("task")
	if !ok {
		return "", &MissingFieldError{Operation: operation, Field: "task href"}
	}
	return href, nil
}

// ExtractResultsList returns the "results" sequence from a paginated
// list response, preserving order. A missing "results" key counts as an
// empty list, not a failure. With allowEmpty false an empty list is
// rejected with EmptyResultsError.
func ExtractResultsList(resp httpclient.Response, operation string, allowEmpty bool) ([]Document, error) {
	doc, err := ParseJSONResponse(resp, operation, true)
	if err != nil {
		return nil, err
	}

	results := []Document{}
	if field, ok := doc.Field("results"); ok && !field.IsNull() {
		arr, ok := field.Array()
		if !ok {
			return nil, &ResponseError{Operation: operation, Err: errResultsNotArray}
		}
		results = arr
	}

	if len(results) == 0 && !allowEmpty {
		return nil, &EmptyResultsError{Operation: operation}
	}
	return results, nil
}

// ExtractSingleResult returns the first entry of a non-empty results
// list. Extra entries are ignored.
func ExtractSingleResult(resp httpclient.Response, operation string) (Document, error) {
	results, err := ExtractResultsList(resp, operation, false)
	if err != nil {
		return Document{}, err
	}
	return results[0], nil
}

// GetResponseField looks up a single top-level field. An absent key
// yields def; a key present with an explicit null yields nil regardless
// of def, since presence-with-null is distinct from absence.
func GetResponseField(resp httpclient.Response, field, operation string, def any) (any, error) {
	doc, err := ParseJSONResponse(resp, operation, true)
	if err != nil {
		return nil, err
	}

	f, ok := doc.Field(field)
	if !ok {
		return def, nil
	}
	return f.Value(), nil
}
