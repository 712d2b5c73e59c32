package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/catalogimport/internal/core"
)

// VendorHeader carries the calling vendor. Authentication happens upstream;
// this service only scopes requests by it.
const VendorHeader = "X-Vendor-ID"

const maxVendorIDLength = 128

// VendorScope requires VendorHeader and stores it with
// core.ContextWithVendorID.
func VendorScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vendorID := strings.TrimSpace(r.Header.Get(VendorHeader))
		if vendorID == "" || len(vendorID) > maxVendorIDLength {
			writeAuthError(w, http.StatusBadRequest, "missing or invalid "+VendorHeader+" header", "IMP008")
			return
		}
		next.ServeHTTP(w, r.WithContext(core.ContextWithVendorID(r.Context(), vendorID)))
	})
}
