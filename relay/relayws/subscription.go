package relayws

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	subscribeMethod    = "lz_subscribe"
	notificationMethod = "lz_subscription"
	packetsTopic       = "packets"
)

// subscriptionRequest represents the JSON-RPC request for subscribing.
type subscriptionRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func newPacketsRequest(id int, dstChainID uint16) subscriptionRequest {
	return subscriptionRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  subscribeMethod,
		Params:  []interface{}{packetsTopic, hexutil.Uint64(dstChainID)},
	}
}

// --- Structures to parse the WS messages ---

type jsonError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// notificationParams carries one subscription notification.
type notificationParams struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// wsMessage is either the response to the subscription request or a
// notification.
type wsMessage struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      json.RawMessage     `json:"id,omitempty"`
	Method  string              `json:"method,omitempty"`
	Params  *notificationParams `json:"params,omitempty"`
	Result  json.RawMessage     `json:"result,omitempty"`
	Error   *jsonError          `json:"error,omitempty"`
}
