// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcescrow/contract"
	"github.com/davecgh/go-spew/spew"
)

const (
	// CallMethod is the node method executing a read-only contract call.
	CallMethod = "btc_call"

	// LatestBlock is the block tag calls are evaluated at.
	LatestBlock = "latest"

	// maxResponseSize bounds the body read from the node.
	maxResponseSize = 4 << 20
)

// Caller executes read-only contract calls.
type Caller interface {
	// Call evaluates calldata against the contract at contractAddr and
	// returns the raw result, nil when the node returned null.
	Call(ctx context.Context, contractAddr string,
		calldata contract.Calldata) (*string, error)
}

// ContractClient is a JSON-RPC 2.0 client for the contract node.  Each call
// is a single HTTP POST; there are no retries and no timeouts besides those
// of the http.Client.
type ContractClient struct {
	endpoint string
	http     *http.Client
	nextID   atomic.Uint64
}

// A compile-time assertion to ensure that ContractClient implements the
// Caller interface.
var _ Caller = (*ContractClient)(nil)

// NewContractClient returns a client posting to endpoint.  A nil httpClient
// uses http.DefaultClient.
func NewContractClient(endpoint string,
	httpClient *http.Client) *ContractClient {

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ContractClient{
		endpoint: endpoint,
		http:     httpClient,
	}
}

// Endpoint returns the URL the client posts to.
func (c *ContractClient) Endpoint() string {
	return c.endpoint
}

// response is a JSON-RPC response envelope.  Fields stay raw so that a
// missing result, a null result and a string result can be told apart.
type response struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
	ID     json.RawMessage `json:"id"`
}

// Call implements the Caller interface.
func (c *ContractClient) Call(ctx context.Context, contractAddr string,
	calldata contract.Calldata) (*string, error) {

	params := []interface{}{contractAddr, calldata.Hex(), LatestBlock}
	raw, err := c.do(ctx, CallMethod, params)
	if err != nil {
		return nil, err
	}

	if bytes.Equal(raw, []byte("null")) {
		log.Debugf("%s %v on %v returned null", CallMethod,
			calldata.Selector(), contractAddr)
		return nil, nil
	}

	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%s: unexpected result %s: %w",
			CallMethod, raw, err)
	}

	log.Debugf("%s %v on %v returned %d hex chars", CallMethod,
		calldata.Selector(), contractAddr, len(result))

	return &result, nil
}

// do posts a single request and returns the raw result.
func (c *ContractClient) do(ctx context.Context, method string,
	params []interface{}) (json.RawMessage, error) {

	id := c.nextID.Add(1)
	req, err := btcjson.NewRequest(btcjson.RpcVersion2, id, method, params)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to build request: %w",
			method, err)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to encode request: %w",
			method, err)
	}

	log.Tracef("Request to %v: %s", c.endpoint, body)

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body,
		maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read response: %w",
			method, err)
	}

	statusOK := httpResp.StatusCode >= 200 && httpResp.StatusCode < 300

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		if !statusOK {
			return nil, fmt.Errorf("%s: unexpected http status %s",
				method, httpResp.Status)
		}
		return nil, fmt.Errorf("%s: malformed response: %w", method,
			err)
	}

	log.Tracef("Response from %v: %v", c.endpoint,
		NewLogClosure(func() string {
			return spew.Sdump(resp)
		}))

	if len(resp.Error) > 0 && !bytes.Equal(resp.Error, []byte("null")) {
		return nil, newRPCError(method, resp.Error)
	}
	if !statusOK {
		return nil, fmt.Errorf("%s: unexpected http status %s", method,
			httpResp.Status)
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("%s: malformed response: no result",
			method)
	}

	return resp.Result, nil
}
