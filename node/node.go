// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node runs a priority queue behind its HTTP APIs.
package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/neilotoole/errgroup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ava-labs/bridgequeue/api"
	"github.com/ava-labs/bridgequeue/api/admin"
	"github.com/ava-labs/bridgequeue/api/jsonrpc"
	"github.com/ava-labs/bridgequeue/api/ws"
	"github.com/ava-labs/bridgequeue/config"
	"github.com/ava-labs/bridgequeue/event"
	"github.com/ava-labs/bridgequeue/lifecycle"
	"github.com/ava-labs/bridgequeue/queue"
	"github.com/ava-labs/bridgequeue/server"
	"github.com/ava-labs/bridgequeue/storage"

	bqlogging "github.com/ava-labs/bridgequeue/internal/logging"
	bqtrace "github.com/ava-labs/bridgequeue/trace"
)

const (
	baseURL         = "/ext"
	metricsEndpoint = "/metrics"
	healthEndpoint  = "/health"
	queueNamespace  = "bridgequeue"
)

var _ api.Backend = (*Node)(nil)

// DefaultOptions are the services every node serves unless disabled in the
// services config.
func DefaultOptions() []api.Option {
	return []api.Option{
		jsonrpc.With(),
		ws.With(),
	}
}

type Node struct {
	config config.Config

	logFactory *bqlogging.Factory
	log        logging.Logger
	tracer     trace.Tracer
	gatherer   metrics.MultiGatherer
	profiler   profiler.ContinuousProfiler

	db    database.Database
	queue *queue.Queue
	feed  *event.Feed[queue.Event]

	listener net.Listener
	server   server.Server
	started *lifecycle.ChanReady
	serving *lifecycle.AtomicBoolReady

	closed       chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error
}

// New opens the store and the queue and registers every API. Nothing is
// served until Run is called.
func New(ctx context.Context, cfg config.Config, options ...api.Option) (*Node, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	logConfig, err := cfg.GetLogConfig()
	if err != nil {
		return nil, err
	}
	n := &Node{
		config:     cfg,
		logFactory: bqlogging.NewFactory(logConfig),
		gatherer:   metrics.NewMultiGatherer(),
		started:    lifecycle.NewChanReady(),
		serving:    lifecycle.NewAtomicBoolReady(true),
		feed:       event.NewFeed[queue.Event](),
		closed:     make(chan struct{}),
	}
	if err := n.init(ctx, options); err != nil {
		_ = n.close()
		return nil, err
	}
	return n, nil
}

func (n *Node) init(ctx context.Context, options []api.Option) error {
	log, err := n.logFactory.Make("main")
	if err != nil {
		return err
	}
	n.log = log

	n.tracer, err = bqtrace.New(&n.config.Trace)
	if err != nil {
		return err
	}

	n.db, err = storage.New(n.config.Pebble, n.config.DataDir, storage.QueueNamespace, n.gatherer)
	if err != nil {
		return fmt.Errorf("%w: unable to open database", err)
	}

	// The admin service is built from the log factory and is off unless
	// enabled in the services config.
	options = append(options[:len(options):len(options)], admin.With(n.logFactory))
	opts, err := api.Apply(n, n.config.Services, options...)
	if err != nil {
		return err
	}
	for _, factory := range opts.EventSubscriptionFactories {
		sub, err := factory.New()
		if err != nil {
			return err
		}
		n.feed.Subscribe(sub)
	}

	layout, err := n.config.GetQueueLayout()
	if err != nil {
		return err
	}
	queueLog, err := n.logFactory.Make("queue")
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	n.queue, err = queue.New(
		ctx,
		n.db,
		queue.WithLogger(queueLog),
		queue.WithTracer(n.tracer),
		queue.WithLayout(layout),
		queue.WithRegisterer(registry),
		queue.WithSubscriptions(n.feed),
	)
	if err != nil {
		return err
	}
	if err := n.gatherer.Register(queueNamespace, registry); err != nil {
		return err
	}

	n.listener, err = net.Listen("tcp", n.config.GetHTTPAddress())
	if err != nil {
		return err
	}
	n.server, err = server.New(
		baseURL,
		n.log,
		n.listener,
		n.config.HTTP,
		n.config.HTTPAllowedOrigins,
		n.config.HTTPAllowedHosts,
		n.config.HTTPShutdownTimeout,
		server.NewRequestLogger(n.log),
	)
	if err != nil {
		return err
	}
	for _, factory := range opts.HandlerFactories {
		handler, err := factory.New(n)
		if err != nil {
			return err
		}
		if err := n.server.AddRoute(handler.Handler, handler.Path, ""); err != nil {
			return err
		}
	}
	errs := wrappers.Errs{}
	errs.Add(
		n.server.AddRoute(promhttp.HandlerFor(n.gatherer, promhttp.HandlerOpts{}), metricsEndpoint, ""),
		n.server.AddRoute(newHealthHandler(n.db, lifecycle.All{n.started, n.serving}), healthEndpoint, ""),
	)
	if errs.Errored() {
		return errs.Err
	}

	if profilerConfig := n.config.GetProfilerConfig(); profilerConfig.Enabled {
		n.profiler = profiler.NewContinuous(
			profilerConfig.Dir,
			profilerConfig.Freq,
			profilerConfig.MaxNumFiles,
		)
	}
	return nil
}

func (n *Node) Tracer() trace.Tracer {
	return n.tracer
}

func (n *Node) Logger() logging.Logger {
	return n.log
}

func (n *Node) Queue() api.Queue {
	return n.queue
}

// Subscribe delivers every queue event committed from now on to [sub].
// [sub] is closed when the node shuts down.
func (n *Node) Subscribe(sub event.Subscription[queue.Event]) {
	n.feed.Subscribe(sub)
}

// Addr is the address the APIs are served on.
func (n *Node) Addr() net.Addr {
	return n.listener.Addr()
}

// Ready reports whether the node is serving.
func (n *Node) Ready() bool {
	return n.started.Ready() && n.serving.Ready()
}

// Run serves the APIs until [ctx] is done or serving fails, then shuts the
// node down.
func (n *Node) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := n.server.Dispatch()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	if n.profiler != nil {
		g.Go(n.profiler.Dispatch)
	}
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-n.closed:
		}
		return n.Shutdown()
	})

	c := n.queue.Snapshot()
	n.log.Info("node started",
		zap.Stringer("address", n.Addr()),
		zap.Uint64("head", c.Head),
		zap.Uint64("tail", c.Tail),
	)
	n.started.MarkReady()
	return g.Wait()
}

// Shutdown stops serving and closes the store. It is safe to call more than
// once.
func (n *Node) Shutdown() error {
	n.shutdownOnce.Do(func() {
		n.serving.MarkNotReady()
		if n.log != nil {
			n.log.Info("shutting down node")
		}
		n.shutdownErr = n.close()
		close(n.closed)
	})
	return n.shutdownErr
}

func (n *Node) close() error {
	errs := wrappers.Errs{}
	if n.server != nil {
		errs.Add(n.server.Shutdown())
	}
	if n.listener != nil {
		// Serve closes the listener itself once it has been dispatched.
		if err := n.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs.Add(err)
		}
	}
	if n.profiler != nil {
		n.profiler.Shutdown()
	}
	errs.Add(n.feed.Close())
	if n.db != nil {
		errs.Add(n.db.Close())
	}
	if n.tracer != nil {
		errs.Add(n.tracer.Close())
	}
	n.logFactory.Close()
	return errs.Err
}
