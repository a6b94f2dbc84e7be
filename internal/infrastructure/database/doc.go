// Package database provides the node's SQLite file.
//
// The node keeps very little on disk: the last commanded PWM level of each
// actuator, so that a reboot restores the outputs before anything else runs.
// Open configures the connection for that job. There is one connection,
// every commit is synced before it returns, and the schema migrations are
// embedded in the binary.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
