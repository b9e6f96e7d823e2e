// Package render writes a formula as a Homebrew Ruby formula.
package render
