// Package security holds the TLS settings used by apikit transports.
//
//	cfg := security.TLSConfig{
//	    CAFile:   "/path/to/ca.pem",
//	    CertFile: "/path/to/cert.pem",
//	    KeyFile:  "/path/to/key.pem",
//	}
//
//	tlsConfig, err := cfg.Build()
//
// The tlstest subpackage generates throwaway certificates for tests.
package security
