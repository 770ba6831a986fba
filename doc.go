// Package ntfysub provides a resilient subscription client for ntfy topics.
//
// A Listener keeps one long-lived HTTP subscription to a topic open, reconnects with
// jittered exponential backoff when the connection fails, and resumes from the newest
// message timestamp it has seen so no message is lost across reconnects.
//
// # Quick Start
//
//	import "github.com/arloliu/ntfysub"
//
//	cfg := ntfysub.DefaultConfig()
//	cfg.Endpoint = "https://ntfy.sh"
//	cfg.Topic = "alerts"
//
//	l, err := ntfysub.NewListener(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Shutdown(context.Background())
//
//	for ev := range l.Events() {
//	    switch ev.Kind {
//	    case ntfysub.EventMessage:
//	        fmt.Println(ev.Message.Message)
//	    case ntfysub.EventStateChanged:
//	        fmt.Println("state:", ev.State)
//	    }
//	}
//
// # Architecture
//
// Each Listener runs an actor goroutine that owns the connection state and serves
// commands (Restart, Shutdown, GetState), and one worker goroutine at a time that runs
// the supervised reconnect loop:
//
//	Uninitialized → Connected ⇄ Reconnecting{retry, delay, error}
//
// Messages and state changes are delivered on a single events channel in the order they
// happened. A slow consumer blocks the worker, which stops reading from the server.
// A clean end of the stream by the server ends the listener and closes the channel.
//
// # Many Topics
//
// A Pool hosts many independent listeners sharing one HTTP client, credential store,
// logger and metrics collector:
//
//	pool := ntfysub.NewPool(ntfysub.WithCredentials(store))
//	l, err := pool.Subscribe(cfg)
//
// See the examples/ directory and cmd/ntfysub for complete programs.
package ntfysub

// Version is the library version reported in the default User-Agent.
const Version = "0.1.0"
