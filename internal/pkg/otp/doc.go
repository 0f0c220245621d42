// Package otp generates short numeric one-time codes delivered out of band,
// for example by email as a second login factor.
package otp
