package core

import "context"

type contextKey string

const (
	ctxKeyVendorID  contextKey = "vendor_id"
	ctxKeyIPAddress contextKey = "client_ip"
)

// ContextWithVendorID scopes ctx to a vendor.
func ContextWithVendorID(ctx context.Context, vendorID string) context.Context {
	return context.WithValue(ctx, ctxKeyVendorID, vendorID)
}

// VendorIDFromContext returns the vendor set by ContextWithVendorID.
func VendorIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyVendorID).(string); ok {
		return v
	}
	return ""
}

// ContextWithIPAddress adds the client IP to context for logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// GetIPAddressFromContext extracts the client IP from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
