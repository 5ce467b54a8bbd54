//go:build !nomultiscan

package coef

// multiScanSupported reports whether full-image buffering is built in.
// Build with -tags nomultiscan to leave it out.
const multiScanSupported = true
