// Package jwt issues and verifies HS512 access tokens and carries the verified
// claims through request contexts.
package jwt
