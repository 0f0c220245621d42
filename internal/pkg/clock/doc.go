// Package clock lets business code read the current time through Clocker so
// tests can drive time with Manual.
package clock
