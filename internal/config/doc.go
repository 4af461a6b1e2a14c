// Package config defines the cluster configuration file and the
// environment-driven poll settings.
//
// A cluster file is YAML:
//
//	name: train-01
//	provider: hcloud
//	region: nbg1
//	count: 3
//	node:
//	  instance_type: cx22
//	  image: ubuntu-24.04
//	  disk_size_gb: 50
//	  ssh_keys: [ops]
//	  labels:
//	    team: ml
//
// LoadFile reads, defaults and validates it. LoadPollSettings reads the
// NODEFLEET_* environment variables that bound every wait loop.
package config
