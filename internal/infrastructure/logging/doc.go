// Package logging provides structured logging for the greenhouse node.
//
// It wraps log/slog with the node's default fields: service, node ID,
// build version and a per-process boot ID. Each domain package takes a
// narrow Logger interface, and main hands it a Component logger:
//
//	log := logging.New(cfg.Logging, cfg.Node.ID, version)
//	mgr.SetLogger(log.Component("link"))
//
// Never log credentials. Log the broker username, never the password.
package logging
