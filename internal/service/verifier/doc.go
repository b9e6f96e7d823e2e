// Package verifier checks a formula before it is published.
package verifier
