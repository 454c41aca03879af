// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package cache provides a thread-safe stale-while-revalidate request cache.

The surrounding admin views (node inventory, instance lists) poll the agent
for data that changes slowly. This cache sits between those views and the
agent so repeated requests within the freshness window cost nothing, and
requests landing just after expiry still get an immediate answer.

# Semantics

Each entry moves through three ages:

  - Fresh (age < FreshFor): served directly from memory.
  - Stale (FreshFor <= age < FreshFor+StaleFor): the cached value is
    returned immediately and a single background fetch revalidates it.
  - Expired (age >= FreshFor+StaleFor): the caller blocks on a fetch.

Concurrent callers on the same cold key share one in-flight fetch instead
of stampeding the agent. A failed revalidation keeps the old value; the
next request past the stale window retries.

# Usage Example

	c := cache.New(cache.Config{FreshFor: 10 * time.Second, StaleFor: time.Minute})
	v, err := c.GetOrFetch(ctx, "nodes", func(ctx context.Context) (any, error) {
	    return client.ListNodes(ctx)
	})

The log engine itself never reads through this cache: live events flow
straight into the stream buffer.
*/
package cache
