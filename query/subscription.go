package query

// SubscriptionHandle is returned by SubscriptionTransport.Subscribe and
// lets a hook tear its subscription down.
type SubscriptionHandle interface {
	Unsubscribe()
}

// SubscriptionTransport is the shape a WebSocket-backed GraphQL
// subscription client must expose to back useSubscription; wsproto.Client
// implements it. Kept as an interface here so a Client can be built and
// tested against a fake transport without a live socket (spec §6 "the
// subscription manager is supplied to the client, not owned by it").
type SubscriptionTransport interface {
	Subscribe(req Request, onData func(data any), onError func(err error), onComplete func()) SubscriptionHandle
}
