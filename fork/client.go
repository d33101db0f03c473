package fork

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/pkg/errors"
)

// ClientConfig configures the connection to a mainnet-fork dev node
// (hardhat node or anvil).
type ClientConfig struct {
	URL            string        `koanf:"url"`
	Namespace      string        `koanf:"namespace"`
	Timeout        time.Duration `koanf:"timeout"`
	Retries        uint          `koanf:"retries"`
	ConnectionWait time.Duration `koanf:"connection-wait"`
	ArgLogLimit    uint          `koanf:"arg-log-limit"`
	RetryErrors    string        `koanf:"retry-errors"`
}

type ClientConfigFetcher func() *ClientConfig

var DefaultClientConfig = ClientConfig{
	URL:            "http://127.0.0.1:8545",
	Namespace:      "hardhat",
	Timeout:        time.Minute,
	Retries:        0,
	ConnectionWait: time.Minute,
	ArgLogLimit:    2048,
	RetryErrors:    "",
}

func ClientConfigAddOptions(prefix string, f *flag.FlagSet, defaultConfig *ClientConfig) {
	f.String(prefix+".url", defaultConfig.URL, "RPC url of the fork node")
	f.String(prefix+".namespace", defaultConfig.Namespace, "dev RPC namespace of the fork node (hardhat or anvil)")
	f.Duration(prefix+".timeout", defaultConfig.Timeout, "per-response timeout (0-disabled)")
	f.Uint(prefix+".retries", defaultConfig.Retries, "number of retries in case of failure(0 mean one attempt)")
	f.Duration(prefix+".connection-wait", defaultConfig.ConnectionWait, "how long to wait for initial connection")
	f.Uint(prefix+".arg-log-limit", defaultConfig.ArgLogLimit, "limit size of arguments in log entries")
	f.String(prefix+".retry-errors", defaultConfig.RetryErrors, "Errors matching this regular expression are automatically retried")
}

func (c *ClientConfig) Validate() error {
	if c.Namespace != "hardhat" && c.Namespace != "anvil" {
		return errors.Errorf("unsupported fork node namespace %q (want hardhat or anvil)", c.Namespace)
	}
	if c.RetryErrors != "" {
		if _, err := regexp.Compile(c.RetryErrors); err != nil {
			return errors.Wrap(err, "invalid retry-errors regexp")
		}
	}
	return nil
}

// Client talks to the fork node. Beyond the standard eth namespace it
// drives the node's dev RPC surface: account impersonation, balance
// seeding, snapshots and time travel.
type Client struct {
	config ClientConfigFetcher
	client *rpc.Client
	eth    *ethclient.Client
	logId  atomic.Uint64
}

func NewClient(config ClientConfigFetcher) *Client {
	return &Client{config: config}
}

// NewClientWithConn wraps an already-established RPC connection, such as an
// in-process one.
func NewClientWithConn(config ClientConfigFetcher, conn *rpc.Client) *Client {
	return &Client{
		config: config,
		client: conn,
		eth:    ethclient.NewClient(conn),
	}
}

func (c *Client) Start(ctx_in context.Context) error {
	url := c.config().URL
	if url == "" {
		return errors.New("no url provided for the fork node")
	}
	connTimeout := time.After(c.config().ConnectionWait)
	for {
		var ctx context.Context
		var cancelCtx context.CancelFunc
		timeout := c.config().Timeout
		if timeout > 0 {
			ctx, cancelCtx = context.WithTimeout(ctx_in, timeout)
		} else {
			ctx, cancelCtx = context.WithCancel(ctx_in)
		}
		client, err := rpc.DialContext(ctx, url)
		cancelCtx()
		if err == nil {
			c.client = client
			c.eth = ethclient.NewClient(client)
			return nil
		}
		if strings.Contains(err.Error(), "parse") ||
			strings.Contains(err.Error(), "malformed") {
			return errors.Wrapf(err, "url %s", url)
		}
		select {
		case <-ctx_in.Done():
			return ctx_in.Err()
		case <-connTimeout:
			return errors.Wrap(err, "timeout trying to connect")
		case <-time.After(time.Second):
		}
	}
}

func (c *Client) Close() {
	c.client.Close()
}

// Eth exposes the typed ethclient view of the same connection.
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

func limitString(limit int, str string) string {
	if limit == 0 || len(str) <= limit {
		return str
	}
	prefix := str[:limit/2-1]
	postfix := str[len(str)-limit/2+1:]
	return fmt.Sprintf("%v..%v", prefix, postfix)
}

func logArgs(limit int, args ...interface{}) string {
	res := "["
	for i, arg := range args {
		marshalled, err := json.Marshal(arg)
		if err != nil {
			res += "\"CANNOT MARSHALL:" + limitString(limit, err.Error()) + "\""
		} else {
			res += limitString(limit, string(marshalled))
		}
		if i < len(args)-1 {
			res += ", "
		}
	}
	res += "]"
	return res
}

func (c *Client) CallContext(ctx_in context.Context, result interface{}, method string, args ...interface{}) error {
	if c.client == nil {
		return errors.New("not connected")
	}
	logId := c.logId.Add(1)
	log.Trace("sending fork RPC request", "method", method, "logId", logId, "args", logArgs(int(c.config().ArgLogLimit), args...))
	var err error
	for i := 0; i < int(c.config().Retries)+1; i++ {
		if ctx_in.Err() != nil {
			return ctx_in.Err()
		}
		var ctx context.Context
		var cancelCtx context.CancelFunc
		timeout := c.config().Timeout
		if timeout > 0 {
			ctx, cancelCtx = context.WithTimeout(ctx_in, timeout)
		} else {
			ctx, cancelCtx = context.WithCancel(ctx_in)
		}
		err = c.client.CallContext(ctx, result, method, args...)
		cancelCtx()
		logger := log.Trace
		limit := int(c.config().ArgLogLimit)
		if err != nil {
			logger = log.Info
			limit = 0
		}
		logger("fork RPC response", "method", method, "logId", logId, "err", err, "result", limitString(limit, fmt.Sprintf("%+v", result)), "attempt", i, "args", logArgs(limit, args...))
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			continue
		}
		retryErrors := c.config().RetryErrors
		if retryErrors != "" {
			match, regexErr := regexp.MatchString(retryErrors, err.Error())
			if regexErr != nil {
				log.Warn("fork client: bad value for retry-errors. Not retrying.", "err", err, "value", retryErrors)
			}
			if match {
				continue
			}
		}
		return err
	}
	return err
}

func (c *Client) devMethod(suffix string) string {
	return c.config().Namespace + "_" + suffix
}

// ImpersonateAccount makes the fork node accept transactions from an
// account the harness holds no key for, such as a whale or the live
// governance address.
func (c *Client) ImpersonateAccount(ctx context.Context, account common.Address) error {
	return c.CallContext(ctx, nil, c.devMethod("impersonateAccount"), account)
}

func (c *Client) StopImpersonatingAccount(ctx context.Context, account common.Address) error {
	return c.CallContext(ctx, nil, c.devMethod("stopImpersonatingAccount"), account)
}

// SetBalance seeds an account's ether balance on the fork.
func (c *Client) SetBalance(ctx context.Context, account common.Address, balance *big.Int) error {
	return c.CallContext(ctx, nil, c.devMethod("setBalance"), account, (*hexutil.Big)(balance))
}

// SetStorageAt overwrites one storage slot of a contract on the fork.
func (c *Client) SetStorageAt(ctx context.Context, account common.Address, slot common.Hash, value common.Hash) error {
	return c.CallContext(ctx, nil, c.devMethod("setStorageAt"), account, slot, value)
}

// Snapshot records the current fork state and returns an id for RevertTo.
// Reverting consumes the snapshot, so take a fresh one per test.
func (c *Client) Snapshot(ctx context.Context) (string, error) {
	var id string
	if err := c.CallContext(ctx, &id, "evm_snapshot"); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) RevertTo(ctx context.Context, id string) error {
	var ok bool
	if err := c.CallContext(ctx, &ok, "evm_revert", id); err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("fork node refused to revert to snapshot %s", id)
	}
	return nil
}

// IncreaseTime shifts the next block's timestamp forward.
func (c *Client) IncreaseTime(ctx context.Context, duration time.Duration) error {
	return c.CallContext(ctx, nil, "evm_increaseTime", int64(duration.Seconds()))
}

func (c *Client) Mine(ctx context.Context) error {
	return c.CallContext(ctx, nil, "evm_mine")
}

func (c *Client) MineBlocks(ctx context.Context, blocks int) error {
	for i := 0; i < blocks; i++ {
		if err := c.Mine(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SleepAndMine advances chain time and seals a block at the new timestamp.
func (c *Client) SleepAndMine(ctx context.Context, duration time.Duration) error {
	if err := c.IncreaseTime(ctx, duration); err != nil {
		return err
	}
	return c.Mine(ctx)
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
}

// SendTransactionFrom submits an unsigned transaction on behalf of an
// impersonated account. The node signs internally, which is the only way to
// spend from an account the harness has no key for.
func (c *Client) SendTransactionFrom(ctx context.Context, from common.Address, to *common.Address, value *big.Int, data []byte) (common.Hash, error) {
	args := sendTxArgs{
		From: from,
		To:   to,
		Data: data,
	}
	if value != nil {
		args.Value = (*hexutil.Big)(value)
	}
	var hash common.Hash
	if err := c.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}
