package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error"`
	} `json:"items"`
}

// DeleteDocuments removes ids from the default index in one bulk request.
// Documents that are already gone count as deleted.
func (c *Client) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, id := range ids {
		action := map[string]any{"delete": map[string]any{"_index": c.index, "_id": id}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(c.index),
	)
	if err != nil {
		return fmt.Errorf("bulk delete: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return fmt.Errorf("bulk delete: %w", responseError(res))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if !parsed.Errors {
		return nil
	}

	var failed []string
	for _, item := range parsed.Items {
		for _, r := range item {
			if r.Status >= http.StatusMultipleChoices && r.Status != http.StatusNotFound {
				failed = append(failed, r.ID)
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("bulk delete failed for %d of %d documents: %v", len(failed), len(ids), failed)
	}
	return nil
}
