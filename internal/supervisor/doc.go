// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package supervisor runs Shipwatch's long-lived services under a suture v4
tree.

# Overview

	RootSupervisor ("shipwatch")
	├── DataSupervisor ("data-layer")
	│   └── retention.Sweeper
	├── MessagingSupervisor ("messaging-layer")
	│   ├── NATSServerService (transport.kind=nats with embedded server)
	│   ├── websocket.Hub
	│   ├── RunOnceService("transport-router")
	│   ├── notify.WebhookForwarder (if notify.webhook_url is set)
	│   └── RunOnceService("replay-source", gated on the router running)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a replay crash does not restart
the admin API.

# Restart semantics

suture restarts any service that returns. Components that cannot run twice
are wrapped in services.RunOnceService, which turns completion into
suture.ErrDoNotRestart:

  - the Watermill router is single-use once Run returns;
  - the replay source finishing a non-loop pass must not start over.

# Logging

Supervisor events go through sutureslog into the zerolog stream:

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
*/
package supervisor
