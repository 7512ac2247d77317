package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/api/dto"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/metrics"
)

// DomainsAPI APIs for domain records, do not use directly
type DomainsAPI struct {
	c *Client
}

// List fetches the collection. Both a bare array and the paginated envelope
// are accepted; for the envelope only the first page is returned.
func (a *DomainsAPI) List(ctx context.Context) (ret []domain.Domain, err error) {
	defer func() { metrics.ObserveAPIRequest("list", err) }()

	resp, err := a.c.NewRequest(ctx, http.MethodGet, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err), Err: err}
	}
	return decodeList(raw)
}

func decodeList(raw []byte) ([]domain.Domain, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []domain.Domain{}, nil
	}

	var records []domain.Domain
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &APIError{StatusCode: http.StatusOK, Message: fmt.Sprintf("decode domain list: %v", err), Err: err}
		}
	case '{':
		var page dto.DomainPage
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, &APIError{StatusCode: http.StatusOK, Message: fmt.Sprintf("decode domain page: %v", err), Err: err}
		}
		records = page.Results
	default:
		return nil, &APIError{StatusCode: http.StatusOK, Message: "unexpected domain list payload"}
	}

	if records == nil {
		records = []domain.Domain{}
	}
	return records, nil
}

// Create adds a record and returns it as stored by the server.
func (a *DomainsAPI) Create(ctx context.Context, input domain.Input) (ret *domain.Domain, err error) {
	defer func() { metrics.ObserveAPIRequest("create", err) }()

	requestBytes, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	resp, err := a.c.NewRequest(ctx, http.MethodPost, "", bytes.NewReader(requestBytes))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	created, err := parseResponse[domain.Domain](resp)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces the editable fields of the record with the given id.
func (a *DomainsAPI) Update(ctx context.Context, id string, input domain.Input) (ret *domain.Domain, err error) {
	defer func() { metrics.ObserveAPIRequest("update", err) }()

	requestBytes, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	resp, err := a.c.NewRequest(ctx, http.MethodPut, itemPath(id), bytes.NewReader(requestBytes))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	updated, err := parseResponse[domain.Domain](resp)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record with the given id.
func (a *DomainsAPI) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.ObserveAPIRequest("delete", err) }()

	resp, err := a.c.NewRequest(ctx, http.MethodDelete, itemPath(id), nil)
	if err != nil {
		return err
	}
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return nil
}

func itemPath(id string) string {
	return url.PathEscape(id) + "/"
}
