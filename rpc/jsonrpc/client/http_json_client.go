package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/tendermint/tendermint-rpc/libs/log"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

const transportHTTP = "http"

// HTTPOption sets an optional parameter on the HTTP transports.
type HTTPOption func(*httpTransport)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *httpTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger log.Logger) HTTPOption {
	return func(t *httpTransport) {
		t.logger = logger
	}
}

// WithHTTPMetrics sets the metrics.
func WithHTTPMetrics(m *Metrics) HTTPOption {
	return func(t *httpTransport) {
		t.metrics = m
	}
}

// httpTransport holds what the POST and GET transports share.
type httpTransport struct {
	address  string
	username string
	password string

	client  *http.Client
	logger  log.Logger
	metrics *Metrics
}

func newHTTPTransport(remote string, opts []HTTPOption) (*httpTransport, error) {
	parsedURL, err := newParsedURL(remote)
	if err != nil {
		return nil, invalidRemote(remote, err)
	}
	httpClient, err := DefaultHTTPClient(remote)
	if err != nil {
		return nil, invalidRemote(remote, err)
	}

	parsedURL.SetDefaultSchemeHTTP()
	password, _ := parsedURL.User.Password()

	t := &httpTransport{
		address:  parsedURL.GetTrimmedURL(),
		username: parsedURL.User.Username(),
		password: password,
		client:   httpClient,
		logger:   log.NewNopLogger(),
		metrics:  NopMetrics(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// do sends httpReq and returns the response body. A body that does not parse
// as an envelope is reported together with the HTTP status.
func (t *httpTransport) do(httpReq *http.Request) ([]byte, int, error) {
	if t.username != "" || t.password != "" {
		httpReq.SetBasicAuth(t.username, t.password)
	}
	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("post failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := ioutil.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, httpResp.StatusCode, nil
}

func (t *httpTransport) observe(method, transport string, start time.Time, err error) {
	t.metrics.Requests.With("method", method, "transport", transport).Add(1)
	t.metrics.RequestDuration.With("method", method, "transport", transport).Observe(time.Since(start).Seconds())
	if err != nil {
		t.metrics.FailedRequests.With("method", method, "transport", transport).Add(1)
		t.logger.Debug("rpc call failed", "method", method, "transport", transport, "err", err)
	}
}

func parseHTTPResponse(body []byte, status int) (rpctypes.RPCResponse, error) {
	resp, err := rpctypes.ParseResponse(body)
	if err != nil && status != http.StatusOK {
		return rpctypes.RPCResponse{}, fmt.Errorf("server returned %d %s: %w",
			status, http.StatusText(status), err)
	}
	return resp, err
}

//-----------------------------------------------------------------------------

// Client is a JSON-RPC client, which sends POST HTTP requests to the
// remote server. Every call carries a fresh correlation id and the response
// must echo it.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	*httpTransport

	ids *idGenerator
}

// New returns a Client pointed at the given address. Remotes without a
// scheme or with tcp:// are reached over http, unix:// over the socket.
// An error is returned on invalid remote.
func New(remote string, opts ...HTTPOption) (*Client, error) {
	t, err := newHTTPTransport(remote, opts)
	if err != nil {
		return nil, err
	}
	return &Client{httpTransport: t, ids: newIDGenerator()}, nil
}

// Execute POSTs one request envelope and returns the matching response
// envelope. Error responses are returned as-is; see rpctypes.Unwrap.
func (c *Client) Execute(ctx context.Context, method string, params json.RawMessage) (
	resp rpctypes.RPCResponse, err error) {
	start := time.Now()
	defer func() { c.observe(method, transportHTTP, start, err) }()

	id := c.ids.next()
	request := rpctypes.NewRPCRequest(id, method, params)
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return rpctypes.RPCResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address, bytes.NewReader(requestBytes))
	if err != nil {
		return rpctypes.RPCResponse{}, fmt.Errorf("request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(httpReq)
	if err != nil {
		return rpctypes.RPCResponse{}, err
	}
	resp, err = parseHTTPResponse(body, status)
	if err != nil {
		return rpctypes.RPCResponse{}, err
	}
	if err := validateResponseID(id, resp); err != nil {
		return rpctypes.RPCResponse{}, err
	}
	return resp, nil
}

// validateResponseID checks that resp answers the request with id. Error
// responses for requests the node could not parse carry a null id and are let
// through.
func validateResponseID(id rpctypes.JSONRPCStringID, resp rpctypes.RPCResponse) error {
	if resp.ID == nil && resp.Error != nil {
		return nil
	}
	respID, ok := resp.ID.(rpctypes.JSONRPCStringID)
	if !ok || respID != id {
		return fmt.Errorf("%w: response id %v does not match request id %v",
			rpctypes.ErrMalformedEnvelope, resp.ID, id)
	}
	return nil
}
