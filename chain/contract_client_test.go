// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcescrow/contract"
	"github.com/stretchr/testify/require"
)

// rpcRequest is the request shape seen by the test server.
type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// newTestServer returns a server replying with body to every request and
// recording the requests it saw.
func newTestServer(t *testing.T, status int,
	body string) (*httptest.Server, *[]rpcRequest) {

	t.Helper()

	var seen []rpcRequest
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json",
				r.Header.Get("Content-Type"))

			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var req rpcRequest
			require.NoError(t, json.Unmarshal(raw, &req))
			seen = append(seen, req)

			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		},
	))
	t.Cleanup(srv.Close)

	return srv, &seen
}

func testCalldata(t *testing.T) contract.Calldata {
	t.Helper()

	data, err := contract.NewEncoder(nil).GetOrder(7)
	require.NoError(t, err)
	return data
}

func TestCallRequestShape(t *testing.T) {
	t.Parallel()

	srv, seen := newTestServer(t, http.StatusOK,
		`{"jsonrpc":"2.0","id":1,"result":"0x0102"}`)
	client := NewContractClient(srv.URL, srv.Client())
	data := testCalldata(t)

	result, err := client.Call(context.Background(), "bcrt1pcontract",
		data)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, "0x0102", *result)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	require.Equal(t, "2.0", req.Jsonrpc)
	require.Equal(t, CallMethod, req.Method)
	require.Equal(t, uint64(1), req.ID)
	require.Equal(t, []interface{}{
		"bcrt1pcontract", data.Hex(), LatestBlock,
	}, req.Params)

	// Request ids increase per call.
	_, err = client.Call(context.Background(), "bcrt1pcontract", data)
	require.NoError(t, err)
	require.Equal(t, uint64(2), (*seen)[1].ID)
}

func TestCallResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    *string
		wantErr error
		errText string
	}{
		{
			name:   "null result",
			status: http.StatusOK,
			body:   `{"jsonrpc":"2.0","id":1,"result":null}`,
		},
		{
			name:    "missing result",
			status:  http.StatusOK,
			body:    `{"jsonrpc":"2.0","id":1}`,
			errText: "malformed response",
		},
		{
			name:   "empty string",
			status: http.StatusOK,
			body:   `{"jsonrpc":"2.0","id":1,"result":""}`,
			want:   new(string),
		},
		{
			name:    "standard error object",
			status:  http.StatusOK,
			body:    `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`,
			wantErr: ErrRPC,
			errText: "execution reverted",
		},
		{
			name:    "error object on http 500",
			status:  http.StatusInternalServerError,
			body:    `{"jsonrpc":"2.0","id":1,"error":{"reason":"out of gas"}}`,
			wantErr: ErrRPC,
			errText: `{"reason":"out of gas"}`,
		},
		{
			name:    "non-json failure",
			status:  http.StatusBadGateway,
			body:    `bad gateway`,
			errText: "502",
		},
		{
			name:    "json failure without error object",
			status:  http.StatusBadGateway,
			body:    `{"message":"upstream unavailable"}`,
			errText: "502",
		},
		{
			name:    "result on http 503",
			status:  http.StatusServiceUnavailable,
			body:    `{"jsonrpc":"2.0","id":1,"result":"0x01"}`,
			errText: "unexpected http status",
		},
		{
			name:    "malformed success",
			status:  http.StatusOK,
			body:    `{"result":`,
			errText: "malformed response",
		},
		{
			name:    "non-string result",
			status:  http.StatusOK,
			body:    `{"jsonrpc":"2.0","id":1,"result":42}`,
			errText: "unexpected result",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := newTestServer(t, test.status, test.body)
			client := NewContractClient(srv.URL, srv.Client())

			result, err := client.Call(
				context.Background(), "c", testCalldata(t),
			)
			if test.errText != "" {
				require.ErrorContains(t, err, test.errText)
				if test.wantErr != nil {
					require.ErrorIs(t, err, test.wantErr)
				} else {
					require.False(t, errors.Is(err, ErrRPC))
				}
				return
			}

			require.NoError(t, err)
			require.Equal(t, test.want, result)
		})
	}
}

func TestRPCErrorPayload(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, http.StatusOK,
		`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`)
	client := NewContractClient(srv.URL, nil)

	_, err := client.Call(context.Background(), "c", testCalldata(t))

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, CallMethod, rpcErr.Method)
	require.Equal(t, btcjson.RPCErrorCode(-32601), rpcErr.Code)
	require.Equal(t, "method not found", rpcErr.Message)
	require.JSONEq(t, `{"code":-32601,"message":"method not found"}`,
		string(rpcErr.Payload))
}

func TestCallHonoursContext(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		},
	))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(),
		50*time.Millisecond)
	defer cancel()

	client := NewContractClient(srv.URL, srv.Client())
	_, err := client.Call(ctx, "c", testCalldata(t))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, errors.Is(err, ErrRPC))
}
