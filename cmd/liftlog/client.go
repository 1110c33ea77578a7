package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/session"
)

// errNoSession mirrors the daemon's 404 on session reads.
var errNoSession = errors.New("no active session")

type client struct {
	base string
	http *http.Client
}

func newClient() *client {
	return &client{
		base: serverURL,
		http: &http.Client{Timeout: 35 * time.Second},
	}
}

func (c *client) do(method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.base+"/api/v1"+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("is liftlogd running at %s? %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && path == "/session" {
		return errNoSession
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *client) session() (*session.Session, error) {
	var sess session.Session
	if err := c.do(http.MethodGet, "/session", nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// sessionOp posts an operation and prints the resulting session.
func sessionOp(method, path string, body any) error {
	var sess session.Session
	if err := newClient().do(method, path, body, &sess); err != nil {
		return err
	}
	fmt.Println(renderSession(&sess))
	return nil
}
