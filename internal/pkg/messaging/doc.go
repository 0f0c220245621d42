// Package messaging publishes and consumes domain events without tying
// business code to a broker. Drivers: NATS, Kafka and an in-process memory
// broker for tests and single node runs.
package messaging
