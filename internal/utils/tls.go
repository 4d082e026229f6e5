// Package utils holds small helpers shared by the commands.
package utils

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

// TLSConfig builds a client TLS config for the redis & postgres connections.
// It returns nil (plain connections) when no files are given.
func TLSConfig(cacert, cert, key string) (*tls.Config, error) {
	if cacert == "" && cert == "" && key == "" {
		return nil, nil
	}
	if (cert == "") != (key == "") {
		return nil, fmt.Errorf("%w tls cert & key must be given together", errors.ErrInvalidArg)
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if cert != "" {
		pair, err := tls.LoadX509KeyPair(cert, key)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	if cacert != "" {
		pem, err := os.ReadFile(cacert)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w no certificates found in %s", errors.ErrInvalidArg, cacert)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
