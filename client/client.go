// client/client.go
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"vcs/internal/digest"
	"vcs/internal/errors"
	"vcs/internal/repository"
	"vcs/shared/types"
)

// Client talks to the read API started by `vcs serve`.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

func (c *Client) Health() error {
	resp, err := c.get("/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// History returns every commit in the server's display order.
func (c *Client) History() ([]shared.Commit, error) {
	var commits []shared.Commit
	if err := c.getJSON("/api/history", &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

func (c *Client) Commit(id string) (*shared.Commit, error) {
	var commit shared.Commit
	if err := c.getJSON("/api/commits/"+url.PathEscape(id), &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

// Object returns the stored bytes of d. The caller closes the reader.
func (c *Client) Object(d digest.Digest) (io.ReadCloser, error) {
	resp, err := c.get("/api/objects/" + d.String())
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) Stat(d digest.Digest) (*repository.ObjectInfo, error) {
	var info repository.ObjectInfo
	if err := c.getJSON("/api/objects/"+d.String()+"/stat", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) getJSON(path string, v any) error {
	resp, err := c.get(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// get issues the request and turns non-200 replies into *errors.Error.
func (c *Client) get(path string) (*http.Response, error) {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &errors.Error{}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Type == "" {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	apiErr.Code = resp.StatusCode
	return nil, apiErr
}
