// Package config provides configuration parsing for the observe command.
//
// The configuration is stored in observe.json. This package handles
// loading, saving, defaulting and validating it.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "observation",
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "name": "observe"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
