package api

import (
	"context"
	"net/http"
)

// PlannedRequest is the request a call would send, resolved but not issued.
type PlannedRequest struct {
	Operation string `json:"operation,omitempty"`
	Method    string `json:"method"`
	URL       string `json:"url"`
	Body      any    `json:"body,omitempty"`
}

// Plan runs the same argument and payload checks as Call and returns the
// request it would send. Nothing goes over the wire.
func (c *Client) Plan(name string, args []string, payload any) (*PlannedRequest, error) {
	op, ok := Lookup(name)
	if !ok {
		return nil, &UnknownOperationError{Name: name}
	}
	p := &planner{client: c}
	if err := dispatch(context.Background(), p, op, args, payload, nil); err != nil {
		return nil, err
	}
	p.plan.Operation = op.Name
	return &p.plan, nil
}

// PlanRequest resolves a raw request the way Get, Post, Put and Delete would
// send it.
func (c *Client) PlanRequest(method, endpoint string, root Root, payload any) *PlannedRequest {
	reqURL := c.resolve(endpoint, root)
	switch method {
	case http.MethodGet:
		if params, ok := payload.(map[string]any); ok {
			if q := EncodeQuery(params); q != "" {
				reqURL += "?" + q
			}
		}
		return &PlannedRequest{Method: method, URL: reqURL}
	case http.MethodPost, http.MethodPut:
		return &PlannedRequest{Method: method, URL: reqURL, Body: bodyOrEmpty(payload)}
	default:
		return &PlannedRequest{Method: method, URL: reqURL, Body: payload}
	}
}

// planner is an HTTPExecutor that records the request instead of sending it.
type planner struct {
	client *Client
	plan   PlannedRequest
}

func (p *planner) Get(_ context.Context, endpoint string, params map[string]any, root Root, _ any) error {
	p.plan = *p.client.PlanRequest(http.MethodGet, endpoint, root, params)
	return nil
}

func (p *planner) Post(_ context.Context, endpoint string, data any, root Root, _ any) error {
	p.plan = *p.client.PlanRequest(http.MethodPost, endpoint, root, data)
	return nil
}

func (p *planner) Put(_ context.Context, endpoint string, data any, root Root, _ any) error {
	p.plan = *p.client.PlanRequest(http.MethodPut, endpoint, root, data)
	return nil
}

func (p *planner) Delete(_ context.Context, endpoint string, data any, root Root, _ any) error {
	p.plan = *p.client.PlanRequest(http.MethodDelete, endpoint, root, data)
	return nil
}
