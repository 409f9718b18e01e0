// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package alerts fans threat notifications out to nearby observers.

The Dispatcher subscribes to the store's change feed. When a snapshot
carries a threat it has not alerted on yet, it builds a spatial index
over the new threats and texts every observer whose last reported
position is fresh and inside the geofence radius.

	sender := alerts.NewTextbeltSender(cfg.SMSGatewayURL, cfg.SMSGatewayKey)
	d := alerts.New(db, gateway, sender, cfg.AlertRadiusMiles, cfg.LocationMaxAge)
	go d.Run(ctx)

Without a configured gateway, LogSender writes alerts to the log so the
rest of the pipeline still exercises end to end.

Delivery is at-most-once per observer per threat; a failed send is
logged and not retried.
*/
package alerts
