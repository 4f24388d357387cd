package query

import (
	"context"
	"math/rand"
	"reflect"
	"time"

	"github.com/pulsehq/pulse-core/reactive"
)

// Status is the lifecycle state published by useQuery/useMutation (spec
// §4.5 "status transitions: idle → loading → (success | error)").
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
)

// EventSource is a host-provided event stream (window focus, network
// online) a query subscribes notify to; it returns an unsubscribe func
// (spec §4.5 "refetchOnFocus/refetchOnReconnect ... provided by the
// host").
type EventSource func(notify func()) (unsubscribe func())

// queryConfig collects useQuery's optional policies (spec §4.5 "Optional
// policies").
type queryConfig[T any] struct {
	selectFn        func(any) (T, error)
	onSuccess       func(T)
	onError         func(error)
	enabled         func() bool
	refetchInterval time.Duration
	staleTime       time.Duration
	focusSource     EventSource
	reconnectSource EventSource
}

// QueryOption configures a UseQuery call.
type QueryOption[T any] func(*queryConfig[T])

// WithSelect transforms the raw dispatched value before it is published
// to Data (spec §4.5 "select(data) optionally transforms before
// publishing").
func WithSelect[T any](fn func(any) (T, error)) QueryOption[T] {
	return func(c *queryConfig[T]) { c.selectFn = fn }
}

// WithOnSuccess registers a callback that fires only for a current (not
// superseded) successful completion.
func WithOnSuccess[T any](fn func(T)) QueryOption[T] {
	return func(c *queryConfig[T]) { c.onSuccess = fn }
}

// WithOnError registers a callback that fires only for a current (not
// superseded) failed completion.
func WithOnError[T any](fn func(error)) QueryOption[T] {
	return func(c *queryConfig[T]) { c.onError = fn }
}

// WithEnabled gates automatic execution; toggling it off cancels future
// refetches (spec §4.5 "enabled ... toggling off cancels future
// refetches"). fn is re-evaluated on every would-be refetch.
func WithEnabled[T any](fn func() bool) QueryOption[T] {
	return func(c *queryConfig[T]) { c.enabled = fn }
}

// WithRefetchInterval enables timer-driven refetch, skipped while the
// query is already loading or fetching.
func WithRefetchInterval[T any](d time.Duration) QueryOption[T] {
	return func(c *queryConfig[T]) { c.refetchInterval = d }
}

// WithQueryStaleTime overrides the client's default staleTime for IsStale.
func WithQueryStaleTime[T any](d time.Duration) QueryOption[T] {
	return func(c *queryConfig[T]) { c.staleTime = d }
}

// WithRefetchOnFocus wires a host focus EventSource to trigger a refetch.
func WithRefetchOnFocus[T any](src EventSource) QueryOption[T] {
	return func(c *queryConfig[T]) { c.focusSource = src }
}

// WithRefetchOnReconnect wires a host online EventSource to trigger a
// refetch.
func WithRefetchOnReconnect[T any](src EventSource) QueryOption[T] {
	return func(c *queryConfig[T]) { c.reconnectSource = src }
}

// QueryResult is useQuery's return value (spec §6 "each field is either a
// Signal or a function").
type QueryResult[T any] struct {
	Data       *reactive.Signal[T]
	Error      *reactive.Signal[error]
	Loading    *reactive.Signal[bool]
	Fetching   *reactive.Signal[bool]
	Status     *reactive.Signal[Status]
	IsStale    *reactive.Signal[bool]
	Refetch    func()
	Invalidate func()
	Reset      func()
}

// UseQuery builds the query state machine described in spec §4.5. Queries
// execute synchronously on the calling goroutine (the reactive graph is
// goroutine-scoped and single-observer, spec §5 "single-threaded
// cooperative"); a caller wanting non-blocking dispatch runs UseQuery's
// Refetch from its own goroutine and lets version supersession discard
// stale results. owner scopes the timers/listeners this query installs —
// disposing it stops all future execution.
func UseQuery[T any](owner *reactive.Owner, client *Client, operationName, queryStr string, variables map[string]any, opts ...QueryOption[T]) *QueryResult[T] {
	cfg := queryConfig[T]{staleTime: client.cfg.StaleTime}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	result := &QueryResult[T]{
		Data:     reactive.NewSignal(zero),
		Error:    reactive.NewSignal[error](nil),
		Loading:  reactive.NewSignal(false),
		Fetching: reactive.NewSignal(false),
		Status:   reactive.NewSignal(StatusIdle),
		IsStale:  reactive.NewSignal(false),
	}

	version := &VersionToken{}
	cacheKey := GenerateCacheKey(operationName, queryStr, variables)

	execute := func() {
		if cfg.enabled != nil && !cfg.enabled() {
			return
		}
		if result.Fetching.Peek() {
			return
		}

		token := version.Begin()
		result.Fetching.Write(true)
		if isZero(result.Data.Peek()) {
			result.Loading.Write(true)
		}
		if result.Status.Peek() == StatusIdle {
			result.Status.Write(StatusLoading)
		}

		if entry, ok := client.CacheGet(cacheKey); ok && !entry.IsStale(time.Now(), cfg.staleTime) {
			token.IfCurrent(func() {
				publishQuerySuccess(result, cfg, entry.Value)
			})
			return
		}

		raw, err := client.Dispatch(context.Background(), Request{
			OperationName: operationName,
			Query:         queryStr,
			Variables:     variables,
		}, cacheKey)

		token.IfCurrent(func() {
			if err != nil {
				domainErr := Wrap(err, CodeGraphQLError)
				result.Fetching.Write(false)
				result.Loading.Write(false)
				result.Status.Write(StatusError)
				result.Error.Write(domainErr)
				if cfg.onError != nil {
					cfg.onError(domainErr)
				}
				return
			}

			client.CacheSet(cacheKey, raw)
			publishQuerySuccess(result, cfg, raw)
		})
	}

	result.Refetch = execute
	result.Invalidate = func() {
		client.Invalidate(cacheKey)
		result.IsStale.Write(true)
	}
	result.Reset = func() {
		result.Data.Write(zero)
		result.Error.Write(nil)
		result.Loading.Write(false)
		result.Fetching.Write(false)
		result.Status.Write(StatusIdle)
		result.IsStale.Write(false)
	}

	if cfg.refetchInterval > 0 {
		ticker := time.NewTicker(cfg.refetchInterval)
		stop := make(chan struct{})
		go func() {
			for {
				select {
				case <-ticker.C:
					if !result.Loading.Peek() && !result.Fetching.Peek() {
						execute()
					}
				case <-stop:
					return
				}
			}
		}()
		owner.OnCleanup(func() {
			ticker.Stop()
			close(stop)
		})
	}

	if cfg.focusSource != nil {
		unsubscribe := cfg.focusSource(execute)
		owner.OnCleanup(unsubscribe)
	}
	if cfg.reconnectSource != nil {
		unsubscribe := cfg.reconnectSource(execute)
		owner.OnCleanup(unsubscribe)
	}

	execute()

	return result
}

func publishQuerySuccess[T any](result *QueryResult[T], cfg queryConfig[T], raw any) {
	value, err := selectValue(cfg.selectFn, raw)
	if err != nil {
		domainErr := Wrap(err, CodeGraphQLError)
		result.Fetching.Write(false)
		result.Loading.Write(false)
		result.Status.Write(StatusError)
		result.Error.Write(domainErr)
		if cfg.onError != nil {
			cfg.onError(domainErr)
		}
		return
	}

	result.Data.Write(value)
	result.Error.Write(nil)
	result.Fetching.Write(false)
	result.Loading.Write(false)
	result.Status.Write(StatusSuccess)
	result.IsStale.Write(false)
	if cfg.onSuccess != nil {
		cfg.onSuccess(value)
	}
}

func selectValue[T any](selectFn func(any) (T, error), raw any) (T, error) {
	if selectFn != nil {
		return selectFn(raw)
	}
	if v, ok := raw.(T); ok {
		return v, nil
	}
	var zero T
	return zero, nil
}

// isZero reports whether v is T's zero value; loading is only true while
// Data still holds its zero value (spec §4.5 "loading is true only when
// data is still null").
func isZero[T any](v T) bool {
	var zero T
	return reflect.DeepEqual(v, zero)
}

// mutationConfig collects useMutation's optional policies.
type mutationConfig[T any, V any] struct {
	onMutate          func(V) any
	onSuccess         func(T, any)
	onError           func(error, any)
	invalidateQueries []string
}

// MutationOption configures a UseMutation call.
type MutationOption[T any, V any] func(*mutationConfig[T, V])

// WithOnMutate registers an optimistic-update hook: its return value is
// threaded through as rollback context to the WithMutationSuccess and
// WithMutationError callbacks.
func WithOnMutate[T any, V any](fn func(V) any) MutationOption[T, V] {
	return func(c *mutationConfig[T, V]) { c.onMutate = fn }
}

// WithMutationSuccess registers a success callback receiving the rollback
// context returned by WithOnMutate (nil if none was registered).
func WithMutationSuccess[T any, V any](fn func(T, any)) MutationOption[T, V] {
	return func(c *mutationConfig[T, V]) { c.onSuccess = fn }
}

// WithMutationError registers an error callback receiving the rollback
// context returned by WithOnMutate (nil if none was registered).
func WithMutationError[T any, V any](fn func(error, any)) MutationOption[T, V] {
	return func(c *mutationConfig[T, V]) { c.onError = fn }
}

// WithInvalidateQueries lists cache keys to evict from client on success.
func WithInvalidateQueries[T any, V any](keys ...string) MutationOption[T, V] {
	return func(c *mutationConfig[T, V]) { c.invalidateQueries = keys }
}

// MutationResult is useMutation's return value (spec §6).
type MutationResult[T any, V any] struct {
	Data    *reactive.Signal[T]
	Error   *reactive.Signal[error]
	Loading *reactive.Signal[bool]
	Status  *reactive.Signal[Status]
	Mutate  func(variables V) (T, error)
	Reset   func()
}

// UseMutation builds the single-shot imperative mutation state machine
// (spec §4.5 "useMutation").
func UseMutation[T any, V any](client *Client, mutationStr string, opts ...MutationOption[T, V]) *MutationResult[T, V] {
	cfg := mutationConfig[T, V]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	result := &MutationResult[T, V]{
		Data:    reactive.NewSignal(zero),
		Error:   reactive.NewSignal[error](nil),
		Loading: reactive.NewSignal(false),
		Status:  reactive.NewSignal(StatusIdle),
	}

	result.Mutate = func(variables V) (T, error) {
		var rollback any
		if cfg.onMutate != nil {
			rollback = cfg.onMutate(variables)
		}

		result.Loading.Write(true)
		result.Status.Write(StatusLoading)

		vars := map[string]any{"input": variables}
		req := Request{Query: mutationStr, Variables: vars}
		transformed, err := client.RequestInterceptors.Run(req)
		var raw any
		if err == nil {
			raw, err = client.dispatchOnce(context.Background(), transformed.(Request))
		}

		if err != nil {
			domainErr := Wrap(err, CodeGraphQLError)
			result.Loading.Write(false)
			result.Status.Write(StatusError)
			result.Error.Write(domainErr)
			if cfg.onError != nil {
				cfg.onError(domainErr, rollback)
			}
			var zeroT T
			return zeroT, domainErr
		}

		value, _ := raw.(T)
		result.Data.Write(value)
		result.Error.Write(nil)
		result.Loading.Write(false)
		result.Status.Write(StatusSuccess)

		for _, key := range cfg.invalidateQueries {
			client.Invalidate(key)
		}
		if cfg.onSuccess != nil {
			cfg.onSuccess(value, rollback)
		}

		return value, nil
	}

	result.Reset = func() {
		result.Data.Write(zero)
		result.Error.Write(nil)
		result.Loading.Write(false)
		result.Status.Write(StatusIdle)
	}

	return result
}

// SubStatus is the state table useSubscription walks (spec §4.7).
type SubStatus string

const (
	SubConnecting  SubStatus = "connecting"
	SubConnected   SubStatus = "connected"
	SubError       SubStatus = "error"
	SubReconnecting SubStatus = "reconnecting"
	SubClosed      SubStatus = "closed"
	SubFailed      SubStatus = "failed"
)

// subscriptionConfig collects useSubscription's optional policies.
type subscriptionConfig[T any] struct {
	onData            func(T)
	onError           func(error)
	shouldResubscribe bool
	maxRetries        int
	baseDelay         time.Duration
	maxDelay          time.Duration
}

// SubscriptionOption configures a UseSubscription call.
type SubscriptionOption[T any] func(*subscriptionConfig[T])

func WithSubOnData[T any](fn func(T)) SubscriptionOption[T] {
	return func(c *subscriptionConfig[T]) { c.onData = fn }
}

func WithSubOnError[T any](fn func(error)) SubscriptionOption[T] {
	return func(c *subscriptionConfig[T]) { c.onError = fn }
}

func WithShouldResubscribe[T any](v bool) SubscriptionOption[T] {
	return func(c *subscriptionConfig[T]) { c.shouldResubscribe = v }
}

func WithSubRetryPolicy[T any](maxRetries int, baseDelay, maxDelay time.Duration) SubscriptionOption[T] {
	return func(c *subscriptionConfig[T]) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// SubscriptionResult is useSubscription's return value (spec §6).
type SubscriptionResult[T any] struct {
	Data        *reactive.Signal[T]
	Error       *reactive.Signal[error]
	Status      *reactive.Signal[SubStatus]
	RetryCount  *reactive.Signal[int]
	Unsubscribe func()
	Resubscribe func()
}

// calculateBackoffDelay implements spec §4.5/§8 invariant 7:
// min(baseDelay·2^attempt, maxDelay) ± 25% jitter.
func calculateBackoffDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	backoff := float64(baseDelay) * float64(int64(1)<<uint(attempt))
	if backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}

	jitter := backoff * 0.25
	delta := (rand.Float64()*2 - 1) * jitter
	return time.Duration(backoff + delta)
}

// UseSubscription builds the long-lived WebSocket subscription state
// machine (spec §4.7). owner scopes the retry timer this subscription
// installs.
func UseSubscription[T any](owner *reactive.Owner, client *Client, subscriptionStr string, variables map[string]any, opts ...SubscriptionOption[T]) *SubscriptionResult[T] {
	cfg := subscriptionConfig[T]{
		shouldResubscribe: true,
		maxRetries:        client.cfg.WSMaxRetries,
		baseDelay:         client.cfg.RetryBaseDelay,
		maxDelay:          client.cfg.RetryMaxDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	result := &SubscriptionResult[T]{
		Data:       reactive.NewSignal(zero),
		Error:      reactive.NewSignal[error](nil),
		Status:     reactive.NewSignal(SubConnecting),
		RetryCount: reactive.NewSignal(0),
	}

	var handle SubscriptionHandle
	var retryTimer *time.Timer

	var subscribe func()

	handleError := func(err error) {
		domainErr := Wrap(err, CodeSubscriptionError)
		result.Error.Write(domainErr)
		if cfg.onError != nil {
			cfg.onError(domainErr)
		}

		attempt := result.RetryCount.Peek()
		if !cfg.shouldResubscribe || attempt >= cfg.maxRetries {
			result.Status.Write(SubFailed)
			return
		}

		result.Status.Write(SubReconnecting)
		delay := calculateBackoffDelay(attempt, cfg.baseDelay, cfg.maxDelay)
		retryTimer = time.AfterFunc(delay, func() {
			result.RetryCount.Write(attempt + 1)
			subscribe()
		})
	}

	subscribe = func() {
		result.Status.Write(SubConnecting)
		handle = client.subs.Subscribe(
			Request{Query: subscriptionStr, Variables: variables},
			func(data any) {
				value, _ := data.(T)
				result.Status.Write(SubConnected)
				result.Data.Write(value)
				result.Error.Write(nil)
				result.RetryCount.Write(0)
				if cfg.onData != nil {
					cfg.onData(value)
				}
			},
			handleError,
			func() {
				result.Status.Write(SubClosed)
			},
		)
	}

	result.Unsubscribe = func() {
		if retryTimer != nil {
			retryTimer.Stop()
		}
		if handle != nil {
			handle.Unsubscribe()
		}
		result.Status.Write(SubClosed)
	}
	result.Resubscribe = func() {
		result.Unsubscribe()
		result.RetryCount.Write(0)
		subscribe()
	}

	owner.OnCleanup(result.Unsubscribe)

	subscribe()

	return result
}
