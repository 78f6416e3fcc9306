// Package server holds the HTTP server configuration.
//
// The start command reads the listen port, the API key protecting every
// route and the graceful shutdown timeout from this Config.
//
// # Usage
//
//	if err := cfg.Server.Validate(); err != nil {
//	    return err
//	}
//	app.Listen(cfg.Server.Address())
package server
