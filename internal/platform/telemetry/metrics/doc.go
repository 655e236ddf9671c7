// Package metrics provides operational metrics collection.
//
// Counters are registered on a caller-supplied Prometheus registerer and
// exposed in the Prometheus text format:
//
//   - bookstore_login_attempts_total{outcome}: login gate results
//     (success, invalid_credentials, error). Usernames are never labels.
//   - bookstore_locale_changes_total{locale}: locale selector writes.
//   - bookstore_grpc_requests_total{method,code}: unary gRPC calls served,
//     recorded by UnaryServerInterceptor.
package metrics
