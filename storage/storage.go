// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/corruptabledb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/bridgequeue/pebble"
	"github.com/ava-labs/bridgequeue/utils"
)

// New opens a pebble database in [dataDir]/[namespace] and registers its
// metrics on [gatherer] under [namespace].
//
// The returned database refuses all further operations after it sees an
// unexpected error, so a partially failed write can never be followed by
// another write that assumes it succeeded.
func New(cfg pebble.Config, dataDir string, namespace string, gatherer metrics.MultiGatherer) (database.Database, error) {
	path, err := utils.InitSubDirectory(dataDir, namespace)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	db, err := pebble.New(path, cfg, registry)
	if err != nil {
		return nil, err
	}

	if err := gatherer.Register(namespace, registry); err != nil {
		_ = db.Close()
		return nil, err
	}

	return corruptabledb.New(db), nil
}
