package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/intranet-lab/backend/config"
	"github.com/intranet-lab/backend/pkg/api"
	"github.com/mitchellh/mapstructure"
)

const DefaultEndpoint = "https://exp.host/api/v2"

type IEndpoint interface {
	Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error)
	GetReceipts(ctx context.Context, ids []string) (map[string]PushReceipt, error)
}

type Endpoint struct {
	endpoint    string
	accessToken string

	apiGenerator api.Generator
}

func New(cfg config.PushConfigs) *Endpoint {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &Endpoint{
		endpoint:     endpoint,
		accessToken:  cfg.AccessToken,
		apiGenerator: api.NewGenerator(),
	}
}

func (e *Endpoint) Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error) {
	resp, err := e.apiGenerator.New(e.endpoint, "/push/send").
		Body(jsonBody{v: messages}).
		POST(ctx, e.authOpts()...)
	if err != nil {
		return nil, err
	}

	data, err := e.responseData(resp)
	if err != nil {
		return nil, err
	}

	// The provider returns one ticket per recipient, in submission order.
	var tickets []PushTicket
	if err := mapstructure.Decode(data, &tickets); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (e *Endpoint) GetReceipts(ctx context.Context, ids []string) (map[string]PushReceipt, error) {
	resp, err := e.apiGenerator.New(e.endpoint, "/push/getReceipts").
		Body(jsonBody{v: map[string]any{"ids": ids}}).
		POST(ctx, e.authOpts()...)
	if err != nil {
		return nil, err
	}

	data, err := e.responseData(resp)
	if err != nil {
		return nil, err
	}

	receipts := map[string]PushReceipt{}
	if err := mapstructure.Decode(data, &receipts); err != nil {
		return nil, err
	}

	return receipts, nil
}

func (e *Endpoint) authOpts() []api.Opt {
	if e.accessToken == "" {
		return nil
	}

	return []api.Opt{api.OAuth2("Bearer", e.accessToken)}
}

func (e *Endpoint) responseData(resp *api.Response) (any, error) {
	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, errors.New("invalid response")
	}

	if errs, err := body.Get("errors"); err == nil && errs != nil {
		return nil, fmt.Errorf("provider error: %v", errs)
	}

	data, err := body.Get("data")
	if err != nil {
		return nil, err
	}

	return data, nil
}

type jsonBody struct {
	v any
}

func (b jsonBody) ToReader() (io.Reader, string, error) {
	raw, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", err
	}

	return bytes.NewBuffer(raw), "application/json", nil
}
