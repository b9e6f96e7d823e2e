// Package common contains helpers shared by the formula services:
// the HTTP download client used to fetch formulas and release artifacts.
package common
