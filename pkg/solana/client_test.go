package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/vault-client/pkg/retry"
)

func TestSignatureStatus(t *testing.T) {
	zero, one := 0, 1

	testCases := []struct {
		s         SignatureStatus
		confirmed bool
		finalized bool
	}{
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: "",
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: "random",
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusProcessed,
			},
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &one,
				ConfirmationStatus: "",
			},
			confirmed: true,
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusConfirmed,
			},
			confirmed: true,
		},
		{
			s: SignatureStatus{
				Slot:               10,
				ErrorResult:        nil,
				Confirmations:      &zero,
				ConfirmationStatus: confirmationStatusFinalized,
			},
			confirmed: true,
			finalized: true,
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.confirmed, tc.s.Confirmed())
		assert.Equal(t, tc.finalized, tc.s.Finalized())
	}
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int               `json:"id"`
}

func newTestRPCServer(t *testing.T, handler func(req rpcRequest) (interface{}, *jsonrpc.RPCError)) *client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := handler(req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	c := New(server.URL).(*client)
	c.statusPollLimit = 3
	c.statusPollRate = time.Millisecond
	return c
}

func TestClient_GetMinimumBalanceForRentExemption(t *testing.T) {
	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		require.Equal(t, "getMinimumBalanceForRentExemption", req.Method)
		require.Len(t, req.Params, 1)
		assert.Equal(t, "32", string(req.Params[0]))
		return 1113600, nil
	})

	lamports, err := c.GetMinimumBalanceForRentExemption(32)
	require.NoError(t, err)
	assert.EqualValues(t, 1113600, lamports)
}

func TestClient_GetLatestBlockhash(t *testing.T) {
	var expected Blockhash
	for i := range expected {
		expected[i] = byte(i)
	}

	var calls int
	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		calls++
		require.Equal(t, "getLatestBlockhash", req.Method)
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value": map[string]interface{}{
				"blockhash":            base58.Encode(expected[:]),
				"lastValidBlockHeight": 100,
			},
		}, nil
	})

	actual, err := c.GetLatestBlockhash()
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	// Served from the local cache
	actual, err = c.GetLatestBlockhash()
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	assert.Equal(t, 1, calls)
}

func TestClient_SubmitTransaction(t *testing.T) {
	keys := generateKeys(t, 2)
	tx := NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), []byte{1}, NewAccountMeta(public(keys[0]), true)))
	require.NoError(t, tx.Sign(keys[0]))

	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		require.Equal(t, "sendTransaction", req.Method)
		require.Len(t, req.Params, 2)

		var encoded string
		require.NoError(t, json.Unmarshal(req.Params[0], &encoded))
		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.Equal(t, tx.Marshal(), raw)

		return base58.Encode(tx.Signature()), nil
	})

	sig, err := c.SubmitTransaction(tx, CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, tx.Signature(), sig[:])
}

func TestClient_SubmitTransaction_PreflightFailure(t *testing.T) {
	keys := generateKeys(t, 2)
	tx := NewTransaction(public(keys[0]), NewInstruction(public(keys[1]), []byte{1}, NewAccountMeta(public(keys[0]), true)))
	require.NoError(t, tx.Sign(keys[0]))

	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		return nil, &jsonrpc.RPCError{
			Code:    -32002,
			Message: "Transaction simulation failed",
			Data: map[string]interface{}{
				"err": map[string]interface{}{
					"InstructionError": []interface{}{0, "InsufficientFunds"},
				},
			},
		}
	})

	_, err := c.SubmitTransaction(tx, CommitmentConfirmed)
	require.Error(t, err)

	txErr, ok := err.(*TransactionError)
	require.True(t, ok)
	assert.Equal(t, TransactionErrorInstructionError, txErr.ErrorKey())
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, InstructionErrorInsufficientFunds, txErr.InstructionError().ErrorKey())
}

func TestClient_GetSignatureStatus(t *testing.T) {
	var sig Signature
	sig[0] = 1

	var calls int
	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		require.Equal(t, "getSignatureStatuses", req.Method)
		calls++

		var status interface{}
		switch calls {
		case 1:
			status = nil
		case 2:
			status = map[string]interface{}{"slot": 10, "confirmations": 0, "confirmationStatus": "processed", "err": nil}
		default:
			status = map[string]interface{}{"slot": 10, "confirmations": 1, "confirmationStatus": "confirmed", "err": nil}
		}

		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 10},
			"value":   []interface{}{status},
		}, nil
	})

	status, err := c.GetSignatureStatus(sig, CommitmentConfirmed)
	require.NoError(t, err)
	assert.True(t, status.Confirmed())
	assert.Nil(t, status.ErrorResult)
	assert.Equal(t, 3, calls)
}

func TestClient_GetSignatureStatus_Timeout(t *testing.T) {
	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 10},
			"value":   []interface{}{nil},
		}, nil
	})

	_, err := c.GetSignatureStatus(Signature{}, CommitmentFinalized)
	assert.Equal(t, ErrSignatureNotFound, err)
}

func TestClient_GetSignatureStatus_Stopped(t *testing.T) {
	var calls int
	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		calls++
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 10},
			"value":   []interface{}{nil},
		}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetSignatureStatus(Signature{}, CommitmentConfirmed, retry.Context(ctx))
	assert.Equal(t, ErrSignatureNotFound, err)
	assert.Equal(t, 1, calls)
}

func TestClient_GetSignatureStatus_FailedOnChain(t *testing.T) {
	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 10},
			"value": []interface{}{
				map[string]interface{}{
					"slot":               10,
					"confirmations":      nil,
					"confirmationStatus": "finalized",
					"err":                map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 1}}},
				},
			},
		}, nil
	})

	status, err := c.GetSignatureStatus(Signature{}, CommitmentConfirmed)
	require.NoError(t, err)
	require.NotNil(t, status.ErrorResult)
	assert.Equal(t, TransactionErrorInstructionError, status.ErrorResult.ErrorKey())
}

func TestClient_RequestAirdrop(t *testing.T) {
	account := generateKeys(t, 1)[0]
	var sig Signature
	sig[10] = 7

	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		require.Equal(t, "requestAirdrop", req.Method)
		require.Len(t, req.Params, 3)

		var address string
		require.NoError(t, json.Unmarshal(req.Params[0], &address))
		assert.Equal(t, base58.Encode(public(account)), address)
		assert.Equal(t, "1000000000", string(req.Params[1]))

		return base58.Encode(sig[:]), nil
	})

	actual, err := c.RequestAirdrop(public(account), LamportsPerSol, CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, sig, actual)
}

func TestClient_GetAccountInfo(t *testing.T) {
	keys := generateKeys(t, 2)
	data := []byte("authority")

	c := newTestRPCServer(t, func(req rpcRequest) (interface{}, *jsonrpc.RPCError) {
		require.Equal(t, "getAccountInfo", req.Method)

		var address string
		require.NoError(t, json.Unmarshal(req.Params[0], &address))
		if address != base58.Encode(public(keys[0])) {
			return map[string]interface{}{"context": map[string]interface{}{"slot": 1}, "value": nil}, nil
		}

		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value": map[string]interface{}{
				"lamports":   1113600,
				"owner":      base58.Encode(public(keys[1])),
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
			},
		}, nil
	})

	info, err := c.GetAccountInfo(public(keys[0]), CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, data, info.Data)
	assert.EqualValues(t, public(keys[1]), info.Owner)
	assert.EqualValues(t, 1113600, info.Lamports)

	_, err = c.GetAccountInfo(public(keys[1]), CommitmentConfirmed)
	assert.Equal(t, ErrNoAccountInfo, err)
}

func TestCommitmentFromString(t *testing.T) {
	for level, expected := range map[string]Commitment{
		"processed": CommitmentProcessed,
		"confirmed": CommitmentConfirmed,
		"finalized": CommitmentFinalized,
	} {
		actual, err := CommitmentFromString(level)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}

	_, err := CommitmentFromString("max")
	assert.True(t, errors.Is(err, ErrUnknownCommitment))
}
