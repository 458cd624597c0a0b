package httpclient

import "github.com/kbukum/apikit/security"

// TLSConfig is the shared TLS configuration. See security.TLSConfig.
type TLSConfig = security.TLSConfig
