// Package config defines the settings shared by s3edit and s3edit-formula
// and provides helpers to load, validate and save them in YAML format.
//
// Command-line flags override values read from the file.
package config
