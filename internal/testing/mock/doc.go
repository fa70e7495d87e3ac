// Package mock provides test doubles for time-dependent code.
//
// MockClock implements clock.Clock. Its Sleep returns immediately, advances
// the fake time and records each requested delay so polling loops can assert
// how often and how long they waited.
package mock
