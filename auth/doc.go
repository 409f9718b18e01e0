// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity and token generation utilities.

# Threat IDs

Threat records are keyed by random UUIDs:

	id := auth.NewThreatID()

# Observer Tokens

Observer tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateObserverToken()

Tokens are URL-safe base64 encoded and presented in the X-Observer-Token
header on votes and location updates. ValidateObserverToken rejects
malformed values before any database lookup.

# ID Generation

Random hex IDs for miscellaneous records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving abuse detection:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
