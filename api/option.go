// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/bridgequeue/event"
	"github.com/ava-labs/bridgequeue/queue"
	"github.com/ava-labs/bridgequeue/utils"
)

type Options struct {
	HandlerFactories           []HandlerFactory[Backend]
	EventSubscriptionFactories []event.SubscriptionFactory[queue.Event]
}

type optionFunc func(b Backend, configBytes []byte) (Opt, error)

type OptionFunc[T any] func(b Backend, config T) (Opt, error)

// Option is a service that can be enabled on a node. Its configuration is
// read from the node config's services section under [Namespace].
type Option struct {
	Namespace  string
	OptionFunc optionFunc
}

// NewOption returns an option with:
// 1) A namespace to define the key in the node's services config that
// should be supplied to this option
// 2) A default config value the node will directly unmarshal into
// 3) An option function that takes the backend and resulting config value as
// arguments
func NewOption[T any](namespace string, defaultConfig T, optionFunc OptionFunc[T]) Option {
	return Option{
		Namespace: namespace,
		OptionFunc: func(b Backend, configBytes []byte) (Opt, error) {
			config := defaultConfig
			if len(configBytes) > 0 {
				if err := utils.DecodeConfig(configBytes, &config); err != nil {
					return nil, fmt.Errorf("failed to unmarshal %q config %q: %w", namespace, string(configBytes), err)
				}
			}
			return optionFunc(b, config)
		},
	}
}

// Apply builds [options] in order with the config found under each option's
// namespace in [configs].
func Apply(b Backend, configs map[string]json.RawMessage, options ...Option) (*Options, error) {
	o := &Options{}
	for _, option := range options {
		opt, err := option.OptionFunc(b, configs[option.Namespace])
		if err != nil {
			return nil, err
		}
		opt.Apply(o)
	}
	return o, nil
}

func WithAPIs(handlerFactories ...HandlerFactory[Backend]) Opt {
	return newFuncOption(func(o *Options) {
		o.HandlerFactories = append(o.HandlerFactories, handlerFactories...)
	})
}

func WithEventSubscriptions(subscriptions ...event.SubscriptionFactory[queue.Event]) Opt {
	return newFuncOption(func(o *Options) {
		o.EventSubscriptionFactories = append(o.EventSubscriptionFactories, subscriptions...)
	})
}

type Opt interface {
	Apply(*Options)
}

// NewOpt mixes a list of Opt in a new one Opt.
func NewOpt(opts ...Opt) Opt {
	return newFuncOption(func(o *Options) {
		for _, opt := range opts {
			opt.Apply(o)
		}
	})
}

type funcOption struct {
	f func(*Options)
}

func (fdo *funcOption) Apply(do *Options) {
	fdo.f(do)
}

func newFuncOption(f func(*Options)) *funcOption {
	return &funcOption{
		f: f,
	}
}
