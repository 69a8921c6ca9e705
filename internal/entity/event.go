package entity

import "context"

// Publisher declares the JetStream stream it writes to. The analysis and order
// record services share the record stream, the trading service owns the
// binance order queue.
type Publisher interface {
	JetstreamEventInit(ctx context.Context) error
}

// Subscriber attaches a durable consumer to a stream declared by a Publisher.
// The binance order worker is the only subscriber.
type Subscriber interface {
	JetstreamEventSubscribe(ctx context.Context) error
}
