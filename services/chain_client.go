package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultRPCURL = "https://rpc.testnet.monad.network"

// ChainClient reads Monad chain state over JSON-RPC.
type ChainClient struct {
	RPCURL     string
	HTTPClient *http.Client
}

func NewChainClient() *ChainClient {
	rpcURL := os.Getenv("MONAD_RPC_URL")
	if rpcURL == "" {
		rpcURL = defaultRPCURL
	}
	return &ChainClient{
		RPCURL: rpcURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ChainTransaction is the subset of a transaction the classifier needs.
type ChainTransaction struct {
	Hash  string
	From  string
	To    string
	Value *big.Int
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *ChainClient) call(ctx context.Context, method string, params []any, out any) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.RPCURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create RPC request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call RPC node: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("RPC node returned status %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode RPC response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}

// GetBytecode returns the deployed bytecode at an address ("0x" when none).
func (c *ChainClient) GetBytecode(ctx context.Context, address string) (string, error) {
	var code string
	if err := c.call(ctx, "eth_getCode", []any{address, "latest"}, &code); err != nil {
		return "", err
	}
	return code, nil
}

// IsContract reports whether the address carries deployed bytecode.
func (c *ChainClient) IsContract(ctx context.Context, address string) (bool, error) {
	code, err := c.GetBytecode(ctx, address)
	if err != nil {
		return false, err
	}
	return code != "" && code != "0x", nil
}

// GetTransactionCount returns the nonce (sent-transaction count) of an
// address.
func (c *ChainClient) GetTransactionCount(ctx context.Context, address string) (uint64, error) {
	var raw string
	if err := c.call(ctx, "eth_getTransactionCount", []any{address, "latest"}, &raw); err != nil {
		return 0, err
	}
	return parseQuantity(raw)
}

// BlockNumber returns the latest block number.
func (c *ChainClient) BlockNumber(ctx context.Context) (uint64, error) {
	var raw string
	if err := c.call(ctx, "eth_blockNumber", []any{}, &raw); err != nil {
		return 0, err
	}
	return parseQuantity(raw)
}

type rpcTransaction struct {
	Hash  string `json:"hash"`
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

type rpcBlock struct {
	Transactions []rpcTransaction `json:"transactions"`
}

// BlockTransactions returns the full transactions of one block.
func (c *ChainClient) BlockTransactions(ctx context.Context, number uint64) ([]ChainTransaction, error) {
	var block rpcBlock
	err := c.call(ctx, "eth_getBlockByNumber", []any{fmt.Sprintf("0x%x", number), true}, &block)
	if err != nil {
		return nil, err
	}
	txs := make([]ChainTransaction, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		value, err := parseBigQuantity(tx.Value)
		if err != nil {
			return nil, fmt.Errorf("bad value on tx %s: %w", tx.Hash, err)
		}
		txs = append(txs, ChainTransaction{Hash: tx.Hash, From: tx.From, To: tx.To, Value: value})
	}
	return txs, nil
}

// maxScanDepth bounds the backward block scan; a proper indexer would
// replace this.
const maxScanDepth = 50

// WalletTransactions scans recent blocks backward for transactions
// touching an address, newest first, up to limit.
func (c *ChainClient) WalletTransactions(ctx context.Context, address string, limit int) ([]ChainTransaction, error) {
	head, err := c.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	wanted := strings.ToLower(address)
	var matches []ChainTransaction
	for depth := 0; depth < maxScanDepth && len(matches) < limit; depth++ {
		if head < uint64(depth) {
			break
		}
		txs, err := c.BlockTransactions(ctx, head-uint64(depth))
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			if strings.ToLower(tx.From) == wanted || strings.ToLower(tx.To) == wanted {
				matches = append(matches, tx)
			}
		}
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ContractLabel is the display label for a contract address, e.g.
// "Contract 0x1234...abcd". A registry or name service would resolve a
// real name here.
func ContractLabel(address string) string {
	if len(address) < 10 {
		return fmt.Sprintf("Contract %s", address)
	}
	return fmt.Sprintf("Contract %s...%s", address[:6], address[len(address)-4:])
}

func parseQuantity(raw string) (uint64, error) {
	value, err := parseBigQuantity(raw)
	if err != nil {
		return 0, err
	}
	return value.Uint64(), nil
}

func parseBigQuantity(raw string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(raw, "0x")
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", raw)
	}
	return value, nil
}
