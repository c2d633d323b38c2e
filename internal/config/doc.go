// Package config loads semiresponsive project configuration.
//
// A project is configured by semiresponsive.json or semiresponsive.yaml in
// its root directory:
//
//	{
//	  "name": "blog",
//	  "page": "s3://assets/index.html",
//	  "container": "#layout-switcher",
//	  "switcher": { "paramKey": "layout" },
//	  "server": { "address": ":8080", "defaultWidth": 1024 },
//	  "s3": { "region": "eu-central-1" }
//	}
//
// Every field is optional. Missing values are filled in by applyDefaults,
// and Validate rejects values the switcher or the server cannot work with.
package config
