// Package config loads storectx configuration.
//
// Values are layered, lowest precedence first: built-in defaults, an
// optional YAML file, then STORECTX_ environment variables.
//
// # Configuration File Structure
//
//	local:
//	  backend: sqlite          # memory | sqlite | file | s3
//	  sqlite_path: ./store.db
//	  file_dir: ./store
//	  watch: true              # file backend: relay writes from other processes
//	  s3:
//	    bucket: my-bucket
//	    prefix: storectx/
//	    region: us-east-1
//	    endpoint: http://localhost:9000
//	    path_style: true
//	session:
//	  backend: memory          # memory | sqlite | file
//	log:
//	  level: info              # debug | info | warn | error
//	  format: text             # text | json
//	metrics:
//	  namespace: storectx
//	inspect:
//	  addr: 127.0.0.1:7070
//	tracing:
//	  enabled: false
//
// Every field has an environment counterpart, e.g. STORECTX_LOCAL_BACKEND,
// STORECTX_LOCAL_S3_BUCKET, STORECTX_LOG_LEVEL.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	handles, err := config.Open(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer handles.Close()
package config
