// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

// QueueNamespace is the sub-directory (and metrics prefix) of the queue's
// pebble instance.
const QueueNamespace = "queuedb"
