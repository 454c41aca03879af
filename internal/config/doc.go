// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package config loads and validates the console configuration.

Configuration is layered with koanf v2, later layers overriding earlier:

 1. Built-in defaults (defaultConfig)
 2. YAML config file (first of WARDEN_CONFIG, ./config.yaml, ./config.yml,
    /etc/warden/config.yaml, /etc/warden/config.yml)
 3. WARDEN_* environment variables

Only explicitly mapped environment variables are honored; unknown variables
never reach the configuration. Validation combines go-playground/validator
struct tags with cross-field checks in Config.Validate.

Example config.yaml:

	server:
	  port: 8420
	agent:
	  url: ws://127.0.0.1:24444/ws
	  token: ${AGENT_TOKEN}
	storage:
	  path: /data/warden
	logging:
	  level: debug
	  format: console
*/
package config
