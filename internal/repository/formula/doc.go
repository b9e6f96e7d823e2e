// Package formula stores formula records as YAML files.
package formula
