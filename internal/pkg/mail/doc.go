// Package mail sends email through a pluggable transport.
//
// Callers depend on the Mail interface and the Message payload. SMTP delivers
// through a relay using wneessen/go-mail, Log only records the message.
package mail
