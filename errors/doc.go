// Package errors defines the failure taxonomy surfaced by apikit.
//
// Every failed dispatch is reported as an *AppError whose Code tells the caller
// what went wrong:
//
//   - TRANSPORT_ERROR: the network call itself failed. Cause holds the
//     transport's error (see httpclient.Error for HTTP classification).
//   - PARSE_ERROR: the transport succeeded but the descriptor could not decode
//     the payload. Parse failures are never retried.
//   - INVALID_REQUEST: the descriptor could not be turned into a call.
//   - INVALID_CONFIG: configuration failed validation.
//
// Use IsTransport, IsParse and Cause with any wrapped error chain.
package errors
