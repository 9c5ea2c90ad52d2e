// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"fmt"
	"net/http"

	"github.com/canonical/portal-auth/internal/logging"
)

// TransactionMiddleware runs every mutating request in one transaction,
// committed when the handler answers below 400 and rolled back otherwise.
func TransactionMiddleware(db DBClientInterface, logger logging.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			err := db.WithTx(r.Context(), func(txCtx context.Context) error {
				next.ServeHTTP(rw, r.WithContext(txCtx))

				if rw.statusCode >= http.StatusBadRequest {
					return fmt.Errorf("request failed with status %d", rw.statusCode)
				}

				return nil
			})

			if err != nil {
				logger.Debugf("transaction not committed for %s %s: %v", r.Method, r.URL.Path, err)
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
