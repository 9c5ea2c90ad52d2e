// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "time"

// Config is built once at startup and never mutated.
type Config struct {
	Secret    []byte
	Issuer    string
	AccessTTL time.Duration
}

func NewConfig(secret, issuer string, accessTTL time.Duration) Config {
	return Config{
		Secret:    []byte(secret),
		Issuer:    issuer,
		AccessTTL: accessTTL,
	}
}
