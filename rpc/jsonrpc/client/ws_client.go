package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tendermint/tendermint-rpc/libs/log"
	"github.com/tendermint/tendermint-rpc/libs/service"
	rpctypes "github.com/tendermint/tendermint-rpc/rpc/jsonrpc/types"
)

const (
	// DefaultWSEndpoint is the path of the node's websocket handler.
	DefaultWSEndpoint = "/websocket"

	defaultMaxReconnectAttempts = 25
	defaultWriteWait            = 0
	defaultReadWait             = 0
	defaultPingPeriod           = 0

	maxReconnectBackoff = 10 * time.Minute

	transportWS = "websocket"
)

type connState int

const (
	stateNew connState = iota
	stateOpen
	stateReconnecting
	stateClosed
)

// registration is an entry of the dispatch routine's id table. A unary call
// has a result channel; a subscription has a listener.
type registration struct {
	id  rpctypes.JSONRPCStringID
	gen uint64 // connection generation at registration time

	result   chan callResult
	listener *Listener
}

type callResult struct {
	resp rpctypes.RPCResponse
	err  error
}

func (r *registration) fail(err error) {
	if r.listener != nil {
		r.listener.finish(err)
		return
	}
	r.result <- callResult{err: err}
}

type command struct {
	reg      *registration
	register bool
	done     chan error
}

// WSClient is a WebSocket client. The methods of WSClient are safe for use by
// multiple goroutines.
//
// A single dispatch routine owns the table mapping request ids to waiting
// calls and subscription listeners; registrations are commands sent to it.
// Requests issued while the connection is being re-established are queued and
// written once it is open again. Calls awaiting a response on a lost
// connection fail with ErrConnectionLost; listeners stay registered and the
// reconnect hooks are run, so that subscriptions can be renewed, before the
// queue is flushed.
type WSClient struct {
	service.BaseService

	Address  string // IP:PORT or /path/to/socket
	Endpoint string // /websocket/url/endpoint
	Dialer   func(string, string) (net.Conn, error)

	scheme string
	header http.Header

	logger  log.Logger
	metrics *Metrics
	ids     *idGenerator

	// Maximum reconnect attempts (0 or greater; default: 25).
	maxReconnectAttempts int

	// Time allowed to write a message to the server. 0 means block until operation succeeds.
	writeWait time.Duration

	// Time allowed to read the next message from the server. 0 means block until operation succeeds.
	readWait time.Duration

	// Send pings to server with this period. Must be less than readWait. If 0, no pings will be sent.
	pingPeriod time.Duration

	mtx            sync.Mutex
	conn           *websocket.Conn
	connDone       chan struct{} // closed when conn is torn down
	state          connState
	generation     uint64
	backlog        []rpctypes.RPCRequest
	sentLastPingAt time.Time

	hooksMtx sync.Mutex
	hooks    map[uint64]func()
	nextHook uint64

	commands chan command
	inbound  chan rpctypes.RPCResponse
	connLost chan uint64

	wg sync.WaitGroup
}

// NewWS returns a new client. The endpoint argument must begin with a `/`.
// Remotes with http://, tcp:// or no scheme are dialed with ws://, https://
// with wss://. An error is returned on invalid remote.
func NewWS(remoteAddr, endpoint string, options ...func(*WSClient)) (*WSClient, error) {
	parsedURL, err := newParsedURL(remoteAddr)
	if err != nil {
		return nil, invalidRemote(remoteAddr, err)
	}
	dialFn, err := makeHTTPDialer(remoteAddr)
	if err != nil {
		return nil, invalidRemote(remoteAddr, err)
	}

	header := http.Header{}
	if username := parsedURL.User.Username(); username != "" {
		password, _ := parsedURL.User.Password()
		req := &http.Request{Header: header}
		req.SetBasicAuth(username, password)
	}

	c := &WSClient{
		Address:  parsedURL.GetTrimmedHostWithPath(),
		Dialer:   dialFn,
		Endpoint: endpoint,
		scheme:   parsedURL.websocketScheme(),
		header:   header,

		logger:  log.NewNopLogger(),
		metrics: NopMetrics(),
		ids:     newIDGenerator(),

		maxReconnectAttempts: defaultMaxReconnectAttempts,
		readWait:             defaultReadWait,
		writeWait:            defaultWriteWait,
		pingPeriod:           defaultPingPeriod,

		hooks:    make(map[uint64]func()),
		commands: make(chan command),
		inbound:  make(chan rpctypes.RPCResponse),
		connLost: make(chan uint64),
	}
	for _, option := range options {
		option(c)
	}
	c.BaseService = *service.NewBaseService(c.logger, "WSClient", c)
	return c, nil
}

// MaxReconnectAttempts sets the maximum number of reconnect attempts before
// the client gives up and stops.
// It should only be used in the constructor and is not Goroutine-safe.
func MaxReconnectAttempts(max int) func(*WSClient) {
	return func(c *WSClient) {
		c.maxReconnectAttempts = max
	}
}

// ReadWait sets the amount of time to wait before a websocket read times out.
// It should only be used in the constructor and is not Goroutine-safe.
func ReadWait(readWait time.Duration) func(*WSClient) {
	return func(c *WSClient) {
		c.readWait = readWait
	}
}

// WriteWait sets the amount of time to wait before a websocket write times out.
// It should only be used in the constructor and is not Goroutine-safe.
func WriteWait(writeWait time.Duration) func(*WSClient) {
	return func(c *WSClient) {
		c.writeWait = writeWait
	}
}

// PingPeriod sets the duration for sending websocket pings.
// It should only be used in the constructor - not Goroutine-safe.
func PingPeriod(pingPeriod time.Duration) func(*WSClient) {
	return func(c *WSClient) {
		c.pingPeriod = pingPeriod
	}
}

// WSLogger sets the logger.
// It should only be used in the constructor - not Goroutine-safe.
func WSLogger(logger log.Logger) func(*WSClient) {
	return func(c *WSClient) {
		c.logger = logger
	}
}

// WSMetrics sets the metrics.
// It should only be used in the constructor - not Goroutine-safe.
func WSMetrics(m *Metrics) func(*WSClient) {
	return func(c *WSClient) {
		c.metrics = m
	}
}

// String returns WS client full address.
func (c *WSClient) String() string {
	return fmt.Sprintf("WSClient{%s (%s)}", c.Address, c.Endpoint)
}

// OnStart implements service.Service by dialing a server and starting the
// dispatch and read routines.
func (c *WSClient) OnStart(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.conn = conn
	c.wg.Add(1)
	go c.dispatchRoutine()
	c.openLocked()
	return nil
}

// OnStop implements service.Service by closing the connection. Waiting calls
// and listeners fail with ErrClientNotOpen once the quit channel closes.
func (c *WSClient) OnStop() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.state = stateClosed
	c.backlog = nil
	if c.conn != nil {
		err := c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		if err != nil {
			c.logger.Debug("failed to send close message", "err", err)
		}
		c.conn.Close()
		c.conn = nil
	}
	if c.connDone != nil {
		close(c.connDone)
		c.connDone = nil
	}
}

// Stop overrides service.Service#Stop. There is no other way to wait until
// the routines have exited.
func (c *WSClient) Stop() error {
	err := c.BaseService.Stop()
	c.wg.Wait()
	return err
}

// IsReconnecting returns true if the client is reconnecting right now.
func (c *WSClient) IsReconnecting() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.state == stateReconnecting
}

// IsActive returns true if the client is running and not reconnecting.
func (c *WSClient) IsActive() bool {
	return c.IsRunning() && !c.IsReconnecting()
}

// Execute sends a request and waits for the response carrying its id.
// Cancelling ctx abandons the wait; the request may still reach the node.
func (c *WSClient) Execute(ctx context.Context, method string, params json.RawMessage) (
	resp rpctypes.RPCResponse, err error) {
	start := time.Now()
	defer func() { c.observe(method, start, err) }()

	req := rpctypes.NewRPCRequest(c.ids.next(), method, params)
	reg := &registration{
		id:     req.ID.(rpctypes.JSONRPCStringID),
		result: make(chan callResult, 1),
	}
	if err := c.register(ctx, reg); err != nil {
		return rpctypes.RPCResponse{}, err
	}
	if err := c.send(req); err != nil {
		c.unregister(reg)
		return rpctypes.RPCResponse{}, err
	}

	select {
	case res := <-reg.result:
		return res.resp, res.err
	case <-ctx.Done():
		c.unregister(reg)
		return rpctypes.RPCResponse{}, ctx.Err()
	}
}

// Listen sends a subscribe request and returns the listener receiving its
// frames.
func (c *WSClient) Listen(ctx context.Context, method string, params json.RawMessage) (*Listener, error) {
	if method != "subscribe" {
		return nil, &ProtocolUsageError{Reason: "request method must be subscribe"}
	}

	req := rpctypes.NewRPCRequest(c.ids.next(), method, params)
	l := newListener(c, req.ID.(rpctypes.JSONRPCStringID))
	reg := &registration{id: l.id, listener: l}
	l.reg = reg

	if err := c.register(ctx, reg); err != nil {
		return nil, err
	}
	c.metrics.StreamListeners.Add(1)
	c.metrics.Requests.With("method", method, "transport", transportWS).Add(1)
	if err := c.send(req); err != nil {
		l.Close()
		return nil, err
	}
	c.logger.Debug("listening", "id", l.id, "params", string(req.Params))
	return l, nil
}

// Notify writes req without registering anything for its id.
func (c *WSClient) Notify(ctx context.Context, req rpctypes.RPCRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.metrics.Requests.With("method", req.Method, "transport", transportWS).Add(1)
	return c.send(req)
}

// OnReconnect registers fn to run after every successful reconnect, before
// queued requests are written. fn must not block on responses.
func (c *WSClient) OnReconnect(fn func()) (remove func()) {
	c.hooksMtx.Lock()
	defer c.hooksMtx.Unlock()

	id := c.nextHook
	c.nextHook++
	c.hooks[id] = fn

	return func() {
		c.hooksMtx.Lock()
		defer c.hooksMtx.Unlock()
		delete(c.hooks, id)
	}
}

///////////////////////////////////////////////////////////////////////////////
// Private methods

func (c *WSClient) observe(method string, start time.Time, err error) {
	c.metrics.Requests.With("method", method, "transport", transportWS).Add(1)
	c.metrics.RequestDuration.With("method", method, "transport", transportWS).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FailedRequests.With("method", method, "transport", transportWS).Add(1)
		c.logger.Debug("rpc call failed", "method", method, "err", err)
	}
}

func (c *WSClient) register(ctx context.Context, reg *registration) error {
	c.mtx.Lock()
	switch c.state {
	case stateOpen, stateReconnecting:
		reg.gen = c.generation
	default:
		c.mtx.Unlock()
		return ErrClientNotOpen
	}
	c.mtx.Unlock()

	cmd := command{reg: reg, register: true, done: make(chan error, 1)}
	select {
	case c.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.Quit():
		return ErrClientNotOpen
	}
	select {
	case err := <-cmd.done:
		return err
	case <-c.Quit():
		return ErrClientNotOpen
	}
}

func (c *WSClient) unregister(reg *registration) {
	cmd := command{reg: reg, done: make(chan error, 1)}
	select {
	case c.commands <- cmd:
	case <-c.Quit():
	}
}

// detach removes a closed listener from the id table and from the queue.
func (c *WSClient) detach(l *Listener) {
	c.mtx.Lock()
	for i, req := range c.backlog {
		if id, ok := req.ID.(rpctypes.JSONRPCStringID); ok && id == l.id {
			c.backlog = append(c.backlog[:i], c.backlog[i+1:]...)
			break
		}
	}
	c.mtx.Unlock()

	if l.reg != nil {
		c.unregister(l.reg)
	}
}

func (c *WSClient) send(req rpctypes.RPCRequest) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	switch c.state {
	case stateOpen:
		return c.writeLocked(req)
	case stateReconnecting:
		c.backlog = append(c.backlog, req)
		c.logger.Debug("queued request until reconnected", "req", req)
		return nil
	default:
		return ErrClientNotOpen
	}
}

// writeLocked writes req on the open connection. c.mtx must be held.
func (c *WSClient) writeLocked(req rpctypes.RPCRequest) error {
	conn := c.conn
	if c.writeWait > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
			c.logger.Error("failed to set write deadline", "err", err)
		}
	}
	if err := conn.WriteJSON(req); err != nil {
		c.logger.Error("failed to send request", "req", req, "err", err)
		c.connFailedLocked(conn, err)
		return fmt.Errorf("failed to write request: %w", err)
	}
	return nil
}

func (c *WSClient) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		NetDial: c.Dialer,
		Proxy:   http.ProxyFromEnvironment,
	}
	conn, _, err := dialer.DialContext(ctx, c.scheme+"://"+c.Address+c.Endpoint, c.header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// openLocked marks c.conn open, writes the queued requests and starts the
// connection routines. c.mtx must be held.
func (c *WSClient) openLocked() {
	conn := c.conn
	c.state = stateOpen
	c.connDone = make(chan struct{})
	done := c.connDone

	c.wg.Add(1)
	go c.readRoutine(conn, done)
	if c.pingPeriod > 0 {
		c.wg.Add(1)
		go c.pingRoutine(conn, done)
	}

	backlog := c.backlog
	c.backlog = nil
	for _, req := range backlog {
		if err := c.writeLocked(req); err != nil {
			return
		}
		c.logger.Debug("resent a request", "req", req)
	}
}

// connFailedLocked tears conn down and starts reconnecting. Requests queued
// for the failed connection are dropped; their callers are failed through
// the generation they registered under. c.mtx must be held.
func (c *WSClient) connFailedLocked(conn *websocket.Conn, err error) {
	if c.conn != conn || c.state == stateClosed {
		return
	}
	c.logger.Error("websocket connection lost", "err", err)

	conn.Close()
	c.conn = nil
	if c.connDone != nil {
		close(c.connDone)
		c.connDone = nil
	}
	c.state = stateReconnecting
	c.backlog = nil
	lost := c.generation
	c.generation++

	c.wg.Add(1)
	go c.reconnectRoutine(lost)
}

// reconnectRoutine fails the calls of the lost connection generation and
// then tries to redial up to maxReconnectAttempts with exponential backoff.
// The first attempt is immediate.
func (c *WSClient) reconnectRoutine(lost uint64) {
	defer c.wg.Done()

	select {
	case c.connLost <- lost:
	case <-c.Quit():
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.Quit():
			cancel()
		case <-ctx.Done():
		}
	}()

	for attempt := 0; attempt < c.maxReconnectAttempts; attempt++ {
		if d := reconnectBackoff(attempt); d > 0 {
			c.logger.Info("reconnecting", "attempt", attempt+1, "backoff", d)
			timer := time.NewTimer(d)
			select {
			case <-timer.C:
			case <-c.Quit():
				timer.Stop()
				return
			}
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.logger.Error("failed to redial", "attempt", attempt+1, "err", err)
			continue
		}

		c.mtx.Lock()
		if c.state == stateClosed {
			c.mtx.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.mtx.Unlock()

		c.logger.Info("reconnected", "attempt", attempt+1)
		c.metrics.Reconnects.Add(1)
		c.runReconnectHooks()

		c.mtx.Lock()
		if c.state == stateClosed {
			c.mtx.Unlock()
			return
		}
		c.openLocked()
		c.mtx.Unlock()
		return
	}

	c.logger.Error("reached maximum reconnect attempts, stopping", "attempts", c.maxReconnectAttempts)
	if err := c.BaseService.Stop(); err != nil {
		c.logger.Debug("stop after failed reconnect", "err", err)
	}
}

func reconnectBackoff(attempt int) time.Duration {
	if attempt == 0 {
		return 0
	}
	d := time.Duration(math.Exp2(float64(attempt-1))) * time.Second
	if d > maxReconnectBackoff {
		d = maxReconnectBackoff
	}
	return d
}

func (c *WSClient) runReconnectHooks() {
	c.hooksMtx.Lock()
	ids := make([]uint64, 0, len(c.hooks))
	for id := range c.hooks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.hooks[id])
	}
	c.hooksMtx.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// The dispatch routine is the only reader and writer of the id table.
func (c *WSClient) dispatchRoutine() {
	defer c.wg.Done()

	regs := make(map[rpctypes.JSONRPCStringID]*registration)
	for {
		select {
		case cmd := <-c.commands:
			cmd.done <- c.apply(regs, cmd)

		case resp := <-c.inbound:
			c.route(regs, resp)

		case lost := <-c.connLost:
			for id, reg := range regs {
				if reg.listener == nil && reg.gen <= lost {
					reg.fail(ErrConnectionLost)
					delete(regs, id)
				}
			}

		case <-c.Quit():
			for id, reg := range regs {
				reg.fail(ErrClientNotOpen)
				delete(regs, id)
			}
			return
		}
	}
}

func (c *WSClient) apply(regs map[rpctypes.JSONRPCStringID]*registration, cmd command) error {
	if !cmd.register {
		if regs[cmd.reg.id] == cmd.reg {
			delete(regs, cmd.reg.id)
		}
		return nil
	}
	if _, ok := regs[cmd.reg.id]; ok {
		return ErrDuplicateID
	}
	regs[cmd.reg.id] = cmd.reg
	return nil
}

func (c *WSClient) route(regs map[rpctypes.JSONRPCStringID]*registration, resp rpctypes.RPCResponse) {
	if resp.ID == nil {
		c.logger.Error("node returned an error without id", "err", resp.Error)
		return
	}

	if base, ok := rpctypes.SplitEventID(resp.ID); ok {
		reg, ok := regs[base]
		if !ok || reg.listener == nil {
			c.logger.Debug("dropping event for unknown subscription", "id", resp.ID)
			return
		}
		reg.listener.deliver(resp, c.Quit())
		return
	}

	id, ok := resp.ID.(rpctypes.JSONRPCStringID)
	if !ok {
		c.logger.Debug("dropping response with foreign id", "id", resp.ID)
		return
	}
	reg, ok := regs[id]
	if !ok {
		c.logger.Debug("dropping response for unknown id", "id", id)
		return
	}
	if reg.listener != nil {
		reg.listener.deliver(resp, c.Quit())
		return
	}
	reg.result <- callResult{resp: resp}
	delete(regs, id)
}

// The client ensures that there is at most one reader to a connection by
// executing all reads from this goroutine.
func (c *WSClient) readRoutine(conn *websocket.Conn, done <-chan struct{}) {
	defer c.wg.Done()

	conn.SetPongHandler(func(string) error {
		c.mtx.Lock()
		t := c.sentLastPingAt
		c.mtx.Unlock()
		c.metrics.PingPongLatency.Observe(time.Since(t).Seconds())
		c.logger.Debug("got pong")
		if c.readWait > 0 {
			return conn.SetReadDeadline(time.Now().Add(c.readWait))
		}
		return nil
	})

	for {
		// reset deadline for every message type (control or data)
		if c.readWait > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(c.readWait)); err != nil {
				c.logger.Error("failed to set read deadline", "err", err)
			}
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				return
			default:
			}
			c.mtx.Lock()
			c.connFailedLocked(conn, err)
			c.mtx.Unlock()
			return
		}

		resp, err := rpctypes.ParseResponse(data)
		if err != nil {
			c.logger.Error("failed to parse response", "err", err, "data", string(data))
			continue
		}
		select {
		case c.inbound <- resp:
		case <-done:
			return
		case <-c.Quit():
			return
		}
	}
}

func (c *WSClient) pingRoutine(conn *websocket.Conn, done <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mtx.Lock()
			if c.conn == conn && c.state == stateOpen {
				if c.writeWait > 0 {
					if err := conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
						c.logger.Error("failed to set write deadline", "err", err)
					}
				}
				if err := conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
					c.logger.Error("failed to write ping", "err", err)
					c.connFailedLocked(conn, err)
				} else {
					c.sentLastPingAt = time.Now()
					c.logger.Debug("sent ping")
				}
			}
			c.mtx.Unlock()
		case <-done:
			return
		}
	}
}
